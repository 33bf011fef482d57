package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai3d-studio/internal/domain"
	"ai3d-studio/internal/service"
)

const (
	dashboardPath = "/dashboard"
	homePath      = "/"

	oauthStateCookie = "ai3d_oauth_state"
	oauthCookiePath  = "/auth/oauth"
)

// Toast es la notificación que la UI muestra tras una acción.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

func errorToast(msg string) Toast {
	return Toast{Title: "Error", Description: msg, Variant: "destructive"}
}

// AuthHandler mantiene dependencias para los endpoints de autenticación.
type AuthHandler struct {
	logger       *zap.Logger
	identity     *service.IdentityAdapter
	states       *service.OAuthStateService
	cookieSecure bool
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, identity *service.IdentityAdapter, states *service.OAuthStateService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		identity:     identity,
		states:       states,
		cookieSecure: cookieSecure,
	}
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.formError(c, "Please fill in all fields.")
		return
	}

	identity, err := h.identity.SignInWithPassword(c.Request.Context(), ProfileID(c), req.Email, req.Password)
	if err != nil {
		h.authError(c, err)
		return
	}
	h.signedIn(c, http.StatusOK, identity, Toast{
		Title:       "Welcome back!",
		Description: "You have successfully logged in.",
	})
}

// Signup maneja POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
		AgreeToTerms    bool   `json:"agree_to_terms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.formError(c, "Please fill in all fields.")
		return
	}
	if req.Password != req.ConfirmPassword {
		h.formError(c, "Passwords do not match.")
		return
	}
	if !req.AgreeToTerms {
		h.formError(c, "Please agree to the terms and conditions.")
		return
	}

	displayName := strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	identity, err := h.identity.SignUpWithPassword(c.Request.Context(), ProfileID(c), req.Email, req.Password, displayName)
	if err != nil {
		h.authError(c, err)
		return
	}
	h.signedIn(c, http.StatusCreated, identity, Toast{
		Title:       "Welcome to AI3D Studio!",
		Description: "Your account has been created successfully.",
	})
}

// Logout maneja POST /auth/logout. Siempre responde 200.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.identity.SignOut(c.Request.Context(), ProfileID(c))
	c.JSON(http.StatusOK, gin.H{
		"nav":      domain.NavState{Mode: domain.NavAnonymous},
		"redirect": homePath,
	})
}

// OAuthStart maneja GET /auth/oauth/:provider: guarda el estado firmado y redirige al proveedor.
func (h *AuthHandler) OAuthStart(c *gin.Context) {
	provider := c.Param("provider")
	start, err := h.identity.BeginOAuth(provider)
	if err != nil {
		h.oauthFailed(c, provider, err)
		return
	}

	token, err := h.states.Issue(service.OAuthFlow{
		ProfileID: ProfileID(c),
		Provider:  start.Provider,
		State:     start.State,
		Verifier:  start.Verifier,
	})
	if err != nil {
		h.logger.Error("oauth state issue failed", zap.Error(err))
		h.oauthFailed(c, provider, err)
		return
	}

	h.setStateCookie(c, token, int(h.states.TTL().Seconds()))
	c.Redirect(http.StatusFound, start.URL)
}

// OAuthCallback maneja GET /auth/oauth/callback/:provider.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	token, _ := c.Cookie(oauthStateCookie)
	h.setStateCookie(c, "", -1)

	completion := service.OAuthCompletion{Provider: provider}
	flow, err := h.states.Verify(token, ProfileID(c), provider, c.Query("state"))
	if err != nil {
		h.logger.Warn("oauth state rejected", zap.Error(err), zap.String("provider", provider))
		completion.Error = "invalid_state"
	} else {
		completion.Code = c.Query("code")
		completion.Verifier = flow.Verifier
		completion.Error = c.Query("error")
	}

	if _, err := h.identity.SignInWithOAuth(c.Request.Context(), ProfileID(c), completion); err != nil {
		h.oauthFailed(c, provider, err)
		return
	}
	c.Redirect(http.StatusFound, dashboardPath)
}

func (h *AuthHandler) setStateCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, value, maxAge, oauthCookiePath, "", h.cookieSecure, true)
}

func (h *AuthHandler) signedIn(c *gin.Context, status int, identity domain.UserIdentity, toast Toast) {
	nav := domain.NavStateFrom(domain.CredentialRecord{
		LoggedIn: true,
		Email:    identity.Email,
		Name:     identity.DisplayName,
	})
	c.JSON(status, gin.H{
		"user":     identity,
		"nav":      nav,
		"redirect": dashboardPath,
		"toast":    toast,
	})
}

func (h *AuthHandler) formError(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "toast": errorToast(msg)})
}

func (h *AuthHandler) authError(c *gin.Context, err error) {
	authErr, ok := service.AsAuthError(err)
	if !ok {
		h.logger.Error("unexpected auth failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(statusForAuthError(authErr.Kind), gin.H{
		"error": authErr.Message,
		"kind":  authErr.Kind,
		"toast": errorToast(authErr.Message),
	})
}

// oauthFailed vuelve a la página de inicio de sesión con el tipo de error en la query.
func (h *AuthHandler) oauthFailed(c *gin.Context, provider string, err error) {
	kind := service.Unknown
	if authErr, ok := service.AsAuthError(err); ok {
		kind = authErr.Kind
	}
	q := url.Values{}
	q.Set("error", string(kind))
	q.Set("provider", provider)
	c.Redirect(http.StatusFound, loginPath+"?"+q.Encode())
}

func statusForAuthError(kind service.AuthErrorKind) int {
	switch kind {
	case service.InvalidCredential:
		return http.StatusUnauthorized
	case service.InvalidEmailFormat, service.WeakPassword, service.PopupClosedByUser:
		return http.StatusBadRequest
	case service.RateLimited:
		return http.StatusTooManyRequests
	case service.EmailAlreadyInUse, service.AccountExistsDifferentCredential:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
