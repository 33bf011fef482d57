package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	profileCookie = "ai3d_profile"
	profileKey    = "profile_id"
	profileMaxAge = 365 * 24 * 60 * 60
)

// ProfileMiddleware identifica el perfil de navegador con una cookie persistente.
// Todas las pestañas del mismo navegador comparten perfil y por lo tanto sesión.
func ProfileMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(profileCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(profileCookie, id, profileMaxAge, "/", "", secure, true)
		}
		c.Set(profileKey, id)
		c.Next()
	}
}

// ProfileID obtiene el perfil de navegador desde el contexto.
func ProfileID(c *gin.Context) string {
	return c.GetString(profileKey)
}
