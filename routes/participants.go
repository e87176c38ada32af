package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/models"
)

const msgStatusRequired = "Status é obrigatório"

// POST /events/:id/participants
func (h *handlers) addParticipant(c *gin.Context) {
	eventID, ok := idParam(c, "id", msgBadEventID)
	if !ok {
		return
	}
	var req struct {
		UserID int64 `json:"usuario_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgBadBody)
		return
	}
	if err := h.Participants.Add(c.Request.Context(), eventID, req.UserID, currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.purgeEvent(c, eventID)
	c.JSON(http.StatusCreated, gin.H{"mensagem": "Participante adicionado com sucesso"})
}

// GET /events/:id/participants
func (h *handlers) listParticipants(c *gin.Context) {
	eventID, ok := idParam(c, "id", msgBadEventID)
	if !ok {
		return
	}
	ps, err := h.Participants.List(c.Request.Context(), eventID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

// GET /events/:id/participants/dashboard
func (h *handlers) dashboard(c *gin.Context) {
	eventID, ok := idParam(c, "id", msgBadEventID)
	if !ok {
		return
	}
	d, err := h.Participants.Dashboard(c.Request.Context(), eventID, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// PUT /events/:id/participants/:userId/status
func (h *handlers) updateStatus(c *gin.Context) {
	eventID, ok := idParam(c, "id", msgBadEventID)
	if !ok {
		return
	}
	userID, ok := idParam(c, "userId", msgBadUserID)
	if !ok {
		return
	}
	var req struct {
		Status models.ParticipantStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgBadBody)
		return
	}
	h.setStatus(c, eventID, userID, req.Status)
}

// PUT /events/:id/participants/status
func (h *handlers) updateStatusFromBody(c *gin.Context) {
	eventID, ok := idParam(c, "id", msgBadEventID)
	if !ok {
		return
	}
	var req struct {
		UserID int64                    `json:"usuario_id"`
		Status models.ParticipantStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgBadBody)
		return
	}
	if req.UserID <= 0 {
		badRequest(c, "usuario_id é obrigatório")
		return
	}
	h.setStatus(c, eventID, req.UserID, req.Status)
}

func (h *handlers) setStatus(c *gin.Context, eventID, userID int64, status models.ParticipantStatus) {
	if status == "" {
		badRequest(c, msgStatusRequired)
		return
	}
	if err := h.Participants.UpdateStatus(c.Request.Context(), eventID, userID, currentUser(c), status); err != nil {
		h.fail(c, err)
		return
	}
	h.purgeEvent(c, eventID)
	sendMessage(c, "Status atualizado com sucesso")
}

// DELETE /events/:id/participants/:userId
func (h *handlers) removeParticipant(c *gin.Context) {
	eventID, ok := idParam(c, "id", msgBadEventID)
	if !ok {
		return
	}
	userID, ok := idParam(c, "userId", msgBadUserID)
	if !ok {
		return
	}
	if err := h.Participants.Remove(c.Request.Context(), eventID, userID, currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.purgeEvent(c, eventID)
	sendMessage(c, "Participante removido com sucesso")
}
