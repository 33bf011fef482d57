package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ai3d-studio/internal/service"
)

const loginPath = "/auth/login"

// PageGuardMiddleware corta la petición antes del handler si el perfil no inició sesión.
// Los navegadores reciben un redirect; los clientes JSON un 401 con el destino.
func PageGuardMiddleware(guard *service.PageGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guard == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "guard not configured"})
			c.Abort()
			return
		}

		if guard.Check(c.Request.Context(), ProfileID(c)) {
			c.Next()
			return
		}

		if wantsJSON(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": loginPath})
		} else {
			c.Redirect(http.StatusFound, loginPath)
		}
		c.Abort()
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
