package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/models"
	"eventapi/services"
)

const (
	msgBadBody   = "Dados da requisição inválidos"
	msgBadUserID = "ID de usuário inválido"
)

// POST /signup
func (h *handlers) signup(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, msgBadBody)
		return
	}
	u, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// POST /login
func (h *handlers) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"senha" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email e senha são obrigatórios")
		return
	}
	res, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /users?termo=
func (h *handlers) searchUsers(c *gin.Context) {
	users, err := h.Users.Search(c.Request.Context(), c.Query("termo"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /users/:id
func (h *handlers) getUser(c *gin.Context) {
	id, ok := idParam(c, "id", msgBadUserID)
	if !ok {
		return
	}
	u, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /users/:id
func (h *handlers) updateUser(c *gin.Context) {
	id, ok := idParam(c, "id", msgBadUserID)
	if !ok {
		return
	}
	var in services.UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, msgBadBody)
		return
	}
	u, err := h.Users.Update(c.Request.Context(), id, currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	// cached participant listings embed nome and email
	h.Invalidator.PurgeAll(c.Request.Context())
	c.JSON(http.StatusOK, u)
}

// PATCH /users/:id
func (h *handlers) patchUser(c *gin.Context) {
	id, ok := idParam(c, "id", msgBadUserID)
	if !ok {
		return
	}
	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, msgBadBody)
		return
	}
	u, err := h.Users.Patch(c.Request.Context(), id, currentUser(c), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	// cached participant listings embed nome and email
	h.Invalidator.PurgeAll(c.Request.Context())
	c.JSON(http.StatusOK, u)
}

// DELETE /users/:id
func (h *handlers) deleteUser(c *gin.Context) {
	id, ok := idParam(c, "id", msgBadUserID)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}
	// owned events went with the user
	h.Invalidator.PurgeAll(c.Request.Context())
	sendMessage(c, "Usuário deletado com sucesso")
}
