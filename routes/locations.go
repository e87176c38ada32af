package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/services"
)

const msgBadLocationID = "ID de local inválido"

// POST /locations
func (h *handlers) createLocation(c *gin.Context) {
	var in services.CreateLocationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, msgBadBody)
		return
	}
	loc, err := h.Locations.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

// GET /locations
func (h *handlers) listLocations(c *gin.Context) {
	locs, err := h.Locations.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, locs)
}

// GET /locations/:id
func (h *handlers) getLocation(c *gin.Context) {
	id, ok := idParam(c, "id", msgBadLocationID)
	if !ok {
		return
	}
	loc, err := h.Locations.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// DELETE /locations/:id
func (h *handlers) deleteLocation(c *gin.Context) {
	id, ok := idParam(c, "id", msgBadLocationID)
	if !ok {
		return
	}
	if err := h.Locations.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	// events pointing at it now have local_id = NULL
	h.Invalidator.PurgeAll(c.Request.Context())
	sendMessage(c, "Local deletado com sucesso")
}
