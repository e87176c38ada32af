package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/services"
)

const msgBadEventID = "ID de evento inválido"

// POST /events
func (h *handlers) createEvent(c *gin.Context) {
	var in services.CreateEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, msgBadBody)
		return
	}
	ev, err := h.Events.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Invalidator.PurgeEventsList(c.Request.Context())
	c.JSON(http.StatusCreated, ev)
}

// GET /events
func (h *handlers) listEvents(c *gin.Context) {
	evs, err := h.Events.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, evs)
}

// GET /events/passados
func (h *handlers) listPastEvents(c *gin.Context) {
	evs, err := h.Events.ListPast(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, evs)
}

// GET /events/futuros
func (h *handlers) listFutureEvents(c *gin.Context) {
	evs, err := h.Events.ListFuture(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, evs)
}

// GET /events/:id
func (h *handlers) getEvent(c *gin.Context) {
	id, ok := idParam(c, "id", msgBadEventID)
	if !ok {
		return
	}
	ev, err := h.Events.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DELETE /events/:id
func (h *handlers) deleteEvent(c *gin.Context) {
	id, ok := idParam(c, "id", msgBadEventID)
	if !ok {
		return
	}
	if err := h.Events.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.purgeEvent(c, id)
	sendMessage(c, "Evento deletado com sucesso")
}

func (h *handlers) purgeEvent(c *gin.Context, eventID int64) {
	ctx := c.Request.Context()
	h.Invalidator.PurgeEventsList(ctx)
	h.Invalidator.PurgeEventItem(ctx, eventID)
}
