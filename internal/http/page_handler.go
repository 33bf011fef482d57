package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai3d-studio/internal/catalog"
	"ai3d-studio/internal/domain"
	"ai3d-studio/internal/oauth"
	"ai3d-studio/internal/service"
)

// PageHandler sirve los modelos de página. Cada respuesta relee el CredentialStore
// para el estado de navegación.
type PageHandler struct {
	logger    *zap.Logger
	store     service.CredentialStore
	bus       *service.AuthEventBus
	content   *catalog.Catalog
	providers *oauth.Registry
}

// NewPageHandler crea una instancia de PageHandler con las dependencias necesarias.
func NewPageHandler(
	logger *zap.Logger,
	store service.CredentialStore,
	bus *service.AuthEventBus,
	content *catalog.Catalog,
	providers *oauth.Registry,
) *PageHandler {
	return &PageHandler{
		logger:    logger,
		store:     store,
		bus:       bus,
		content:   content,
		providers: providers,
	}
}

type providerOption struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (h *PageHandler) nav(c *gin.Context) domain.NavState {
	return domain.NavStateFrom(h.store.Read(c.Request.Context(), ProfileID(c)))
}

// Page maneja GET /pages/:name para las páginas públicas.
func (h *PageHandler) Page(c *gin.Context) {
	name := c.Param("name")
	body := gin.H{"page": name, "nav": h.nav(c)}

	switch name {
	case "home":
		body["content"] = h.content.Home
	case "pricing":
		yearly, _ := strconv.ParseBool(c.DefaultQuery("yearly", "false"))
		body["yearly"] = yearly
		body["plans"] = h.content.PlanPrices(yearly)
		body["faqs"] = h.content.Pricing.FAQs
	case "blog":
		category := c.DefaultQuery("category", "All")
		body["categories"] = h.content.BlogCategories()
		body["category"] = category
		listing := h.content.BlogPage(c.Query("q"), category)
		body["posts"] = listing.Posts
		if listing.Featured != nil {
			body["featured"] = listing.Featured
		}
	case "marketplace":
		tab := c.DefaultQuery("tab", catalog.TabProducts)
		body["tab"] = tab
		switch tab {
		case catalog.TabCreators:
			body["creators"] = h.content.Marketplace.Creators
		case catalog.TabAgencies:
			body["agencies"] = h.content.Marketplace.Agencies
		default:
			price := c.DefaultQuery("price", catalog.PriceAll)
			body["tab"] = catalog.TabProducts
			body["price"] = price
			body["models"] = h.content.SearchModels(c.Query("q"), price)
		}
	case "explore":
		category := c.DefaultQuery("category", catalog.ExploreTrending)
		body["categories"] = catalog.ExploreCategories()
		body["category"] = category
		body["models"] = h.content.SearchExplore(c.Query("q"), category)
		body["creators"] = h.content.Explore.Creators
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}

	c.JSON(http.StatusOK, body)
}

// Dashboard maneja GET /pages/dashboard (protegida).
func (h *PageHandler) Dashboard(c *gin.Context) {
	rec := h.store.Read(c.Request.Context(), ProfileID(c))
	c.JSON(http.StatusOK, gin.H{
		"page":          "dashboard",
		"nav":           domain.NavStateFrom(rec),
		"user_name":     rec.Name,
		"stats":         h.content.Dashboard.Stats,
		"recent_models": h.content.Dashboard.RecentModels,
		"earnings":      h.content.Dashboard.Earnings,
	})
}

// Settings maneja GET /pages/settings (protegida).
func (h *PageHandler) Settings(c *gin.Context) {
	rec := h.store.Read(c.Request.Context(), ProfileID(c))
	first, last := splitName(rec.Name)
	c.JSON(http.StatusOK, gin.H{
		"page": "settings",
		"nav":  domain.NavStateFrom(rec),
		"profile": gin.H{
			"first_name": first,
			"last_name":  last,
			"email":      rec.Email,
		},
		"defaults": h.content.Settings,
	})
}

// UpdateProfile maneja PUT /settings/profile (protegida).
func (h *PageHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	profileID := ProfileID(c)
	name := strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	h.store.SetName(ctx, profileID, name)
	h.bus.Publish(profileID)

	c.JSON(http.StatusOK, gin.H{
		"nav": h.nav(c),
		"toast": Toast{
			Title:       "Settings saved",
			Description: "Your settings have been updated successfully.",
		},
	})
}

// LoginPage maneja GET /auth/login.
func (h *PageHandler) LoginPage(c *gin.Context) {
	h.authPage(c, "login")
}

// SignupPage maneja GET /auth/signup.
func (h *PageHandler) SignupPage(c *gin.Context) {
	h.authPage(c, "signup")
}

func (h *PageHandler) authPage(c *gin.Context, page string) {
	body := gin.H{
		"page":      page,
		"nav":       h.nav(c),
		"providers": h.providerOptions(),
	}
	if kind := c.Query("error"); kind != "" {
		label := c.Query("provider")
		if p, err := h.providers.Get(label); err == nil {
			label = p.Label()
		}
		msg := service.OAuthFailureMessage(service.AuthErrorKind(kind), label)
		body["error"] = msg
		body["toast"] = errorToast(msg)
	}
	c.JSON(http.StatusOK, body)
}

func (h *PageHandler) providerOptions() []providerOption {
	names := h.providers.Names()
	out := make([]providerOption, 0, len(names))
	for _, name := range names {
		p, err := h.providers.Get(name)
		if err != nil {
			continue
		}
		out = append(out, providerOption{Name: p.Name(), Label: p.Label()})
	}
	return out
}

func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}
