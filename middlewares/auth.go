package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDKey is where Authenticate stores the caller's id in the gin context.
const UserIDKey = "userId"

type TokenVerifier interface {
	VerifyToken(token string) (int64, error)
}

// Authenticate requires "Authorization: Bearer <token>" and injects the user id.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"erro": "Token não fornecido"})
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"erro": "Token mal formatado"})
			return
		}

		userID, err := verifier.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"erro": "Token inválido ou expirado"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
