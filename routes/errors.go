package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"eventapi/middlewares"
	"eventapi/services"
)

const msgInternal = "Erro interno do servidor"

func statusFor(k services.Kind) int {
	switch k {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail writes {erro} for err. Internal and upstream causes are logged, never
// sent to the client.
func (h *handlers) fail(c *gin.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Message: msgInternal, Err: err}
	}

	status := statusFor(se.Kind)
	if status >= 500 {
		h.requestLogger(c).Error().Err(se.Err).
			Str("kind", se.Kind.String()).
			Str("path", c.FullPath()).
			Msg(se.Message)
	}
	c.JSON(status, gin.H{"erro": se.Message})
}

// requestLogger prefers the logger RequestLogger put on the context, so the
// line carries the request id.
func (h *handlers) requestLogger(c *gin.Context) *zerolog.Logger {
	if l := zerolog.Ctx(c.Request.Context()); l.GetLevel() != zerolog.Disabled {
		scoped := l.With().Str("component", "http").Logger()
		return &scoped
	}
	return &h.logger
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"erro": msg})
}

func sendMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"mensagem": msg})
}

// idParam parses a positive integer path parameter, answering 400 otherwise.
func idParam(c *gin.Context, name, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, msg)
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(middlewares.UserIDKey)
}
