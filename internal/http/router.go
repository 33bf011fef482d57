package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai3d-studio/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	cookieSecure bool,
	guard *service.PageGuard,
	authH *AuthHandler,
	pageH *PageHandler,
	eventsH *EventsHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y perfil de navegador.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), ProfileMiddleware(cookieSecure))

	requireAuth := PageGuardMiddleware(guard)

	auth := r.Group("/auth")
	auth.GET("/login", jsonContentTypeMiddleware(), pageH.LoginPage)
	auth.GET("/signup", jsonContentTypeMiddleware(), pageH.SignupPage)
	auth.POST("/login", jsonContentTypeMiddleware(), authH.Login)
	auth.POST("/signup", jsonContentTypeMiddleware(), authH.Signup)
	auth.POST("/logout", jsonContentTypeMiddleware(), authH.Logout)
	auth.GET("/oauth/:provider", authH.OAuthStart)
	auth.GET("/oauth/callback/:provider", authH.OAuthCallback)

	pages := r.Group("/pages", jsonContentTypeMiddleware())
	pages.GET("/dashboard", requireAuth, pageH.Dashboard)
	pages.GET("/settings", requireAuth, pageH.Settings)
	pages.GET("/:name", pageH.Page)

	settings := r.Group("/settings", jsonContentTypeMiddleware(), requireAuth)
	settings.PUT("/profile", pageH.UpdateProfile)

	r.GET("/events", eventsH.Stream)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
