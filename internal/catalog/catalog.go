// Package catalog sirve el contenido de muestra de las páginas públicas y del dashboard.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

type Feature struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type Home struct {
	Headline string    `yaml:"headline" json:"headline"`
	Features []Feature `yaml:"features" json:"features"`
}

type PlanFeature struct {
	Name     string `yaml:"name" json:"name"`
	Included bool   `yaml:"included" json:"included"`
}

type Plan struct {
	Name         string        `yaml:"name" json:"name"`
	MonthlyPrice float64       `yaml:"monthly_price" json:"monthly_price"`
	YearlyPrice  float64       `yaml:"yearly_price" json:"yearly_price"`
	Description  string        `yaml:"description" json:"description"`
	CTA          string        `yaml:"cta" json:"cta"`
	Popular      bool          `yaml:"popular" json:"popular"`
	Features     []PlanFeature `yaml:"features" json:"features"`
}

type FAQ struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

type Pricing struct {
	Plans []Plan `yaml:"plans" json:"plans"`
	FAQs  []FAQ  `yaml:"faqs" json:"faqs"`
}

type BlogPost struct {
	ID       int      `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Excerpt  string   `yaml:"excerpt" json:"excerpt"`
	Author   string   `yaml:"author" json:"author"`
	Date     string   `yaml:"date" json:"date"`
	ReadTime string   `yaml:"read_time" json:"read_time"`
	Category string   `yaml:"category" json:"category"`
	Featured bool     `yaml:"featured" json:"featured"`
	Tags     []string `yaml:"tags" json:"tags"`
}

type MarketplaceModel struct {
	ID            int      `yaml:"id" json:"id"`
	Title         string   `yaml:"title" json:"title"`
	Creator       string   `yaml:"creator" json:"creator"`
	Price         float64  `yaml:"price" json:"price"`
	OriginalPrice float64  `yaml:"original_price" json:"original_price,omitempty"`
	Rating        float64  `yaml:"rating" json:"rating"`
	Reviews       int      `yaml:"reviews" json:"reviews"`
	Likes         int      `yaml:"likes" json:"likes"`
	Downloads     int      `yaml:"downloads" json:"downloads"`
	Tags          []string `yaml:"tags" json:"tags"`
	Featured      bool     `yaml:"featured" json:"featured"`
}

type MarketplaceCreator struct {
	ID        int      `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Specialty string   `yaml:"specialty" json:"specialty"`
	Rating    float64  `yaml:"rating" json:"rating"`
	Projects  int      `yaml:"projects" json:"projects"`
	Followers int      `yaml:"followers" json:"followers"`
	Tags      []string `yaml:"tags" json:"tags"`
	Featured  bool     `yaml:"featured" json:"featured"`
}

type Agency struct {
	ID        int      `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Specialty string   `yaml:"specialty" json:"specialty"`
	Rating    float64  `yaml:"rating" json:"rating"`
	Clients   int      `yaml:"clients" json:"clients"`
	Projects  int      `yaml:"projects" json:"projects"`
	Employees int      `yaml:"employees" json:"employees"`
	Tags      []string `yaml:"tags" json:"tags"`
	Featured  bool     `yaml:"featured" json:"featured"`
}

type ExploreModel struct {
	ID        int      `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	Creator   string   `yaml:"creator" json:"creator"`
	Category  string   `yaml:"category" json:"category"`
	Views     int      `yaml:"views" json:"views"`
	Likes     int      `yaml:"likes" json:"likes"`
	Downloads int      `yaml:"downloads" json:"downloads"`
	Rating    float64  `yaml:"rating" json:"rating"`
	Tags      []string `yaml:"tags" json:"tags"`
	Price     float64  `yaml:"price" json:"price"`
	Trending  bool     `yaml:"trending" json:"trending"`
}

type ExploreCreator struct {
	ID             int    `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	Models         int    `yaml:"models" json:"models"`
	Followers      int    `yaml:"followers" json:"followers"`
	TotalDownloads int    `yaml:"total_downloads" json:"total_downloads"`
	Verified       bool   `yaml:"verified" json:"verified"`
}

type DashboardStats struct {
	TotalModels    int     `yaml:"total_models" json:"total_models"`
	TotalDownloads int     `yaml:"total_downloads" json:"total_downloads"`
	TotalEarnings  float64 `yaml:"total_earnings" json:"total_earnings"`
	TotalViews     int     `yaml:"total_views" json:"total_views"`
	TotalLikes     int     `yaml:"total_likes" json:"total_likes"`
	MonthlyGrowth  float64 `yaml:"monthly_growth" json:"monthly_growth"`
}

type DashboardModel struct {
	ID        int     `yaml:"id" json:"id"`
	Title     string  `yaml:"title" json:"title"`
	Status    string  `yaml:"status" json:"status"`
	Views     int     `yaml:"views" json:"views"`
	Downloads int     `yaml:"downloads" json:"downloads"`
	Earnings  float64 `yaml:"earnings" json:"earnings"`
	Likes     int     `yaml:"likes" json:"likes"`
	CreatedAt string  `yaml:"created_at" json:"created_at"`
	Price     float64 `yaml:"price" json:"price"`
}

type MonthlyEarning struct {
	Month  string  `yaml:"month" json:"month"`
	Amount float64 `yaml:"amount" json:"amount"`
}

type Dashboard struct {
	Stats        DashboardStats   `yaml:"stats" json:"stats"`
	RecentModels []DashboardModel `yaml:"recent_models" json:"recent_models"`
	Earnings     []MonthlyEarning `yaml:"earnings" json:"earnings"`
}

type Settings struct {
	Notifications struct {
		Email     bool `yaml:"email" json:"email"`
		Push      bool `yaml:"push" json:"push"`
		Marketing bool `yaml:"marketing" json:"marketing"`
		Updates   bool `yaml:"updates" json:"updates"`
	} `yaml:"notifications" json:"notifications"`
	Privacy struct {
		ProfilePublic bool `yaml:"profile_public" json:"profile_public"`
		ShowEmail     bool `yaml:"show_email" json:"show_email"`
		ShowLocation  bool `yaml:"show_location" json:"show_location"`
	} `yaml:"privacy" json:"privacy"`
	Preferences struct {
		Theme         string `yaml:"theme" json:"theme"`
		Language      string `yaml:"language" json:"language"`
		Timezone      string `yaml:"timezone" json:"timezone"`
		DefaultFormat string `yaml:"default_format" json:"default_format"`
	} `yaml:"preferences" json:"preferences"`
}

// Catalog agrupa todo el contenido estático.
type Catalog struct {
	Home      Home      `yaml:"home"`
	Pricing   Pricing   `yaml:"pricing"`
	Dashboard Dashboard `yaml:"dashboard"`
	Settings  Settings  `yaml:"settings"`
	Blog      struct {
		Posts []BlogPost `yaml:"posts"`
	} `yaml:"blog"`
	Marketplace struct {
		Models   []MarketplaceModel   `yaml:"models"`
		Creators []MarketplaceCreator `yaml:"creators"`
		Agencies []Agency             `yaml:"agencies"`
	} `yaml:"marketplace"`
	Explore struct {
		Models   []ExploreModel   `yaml:"models"`
		Creators []ExploreCreator `yaml:"creators"`
	} `yaml:"explore"`
}

// Load parsea el contenido embebido.
func Load() (*Catalog, error) {
	return Parse(defaultContent)
}

// Parse construye un Catalog a partir de YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse content: %w", err)
	}
	return &c, nil
}

// PlanPrice es el precio del período elegido y, en anual, el ahorro frente a doce meses.
type PlanPrice struct {
	Plan
	Price  float64 `json:"price"`
	Period string  `json:"period"`
	Saving float64 `json:"saving,omitempty"`
}

func (c *Catalog) PlanPrices(yearly bool) []PlanPrice {
	out := make([]PlanPrice, 0, len(c.Pricing.Plans))
	for _, p := range c.Pricing.Plans {
		pp := PlanPrice{Plan: p, Price: p.MonthlyPrice, Period: "month"}
		if yearly {
			pp.Price = p.YearlyPrice
			pp.Period = "year"
			if p.MonthlyPrice > 0 {
				pp.Saving = p.MonthlyPrice*12 - p.YearlyPrice
			}
		}
		out = append(out, pp)
	}
	return out
}

// BlogCategories devuelve "All" seguido de las categorías en orden de aparición.
func (c *Catalog) BlogCategories() []string {
	seen := map[string]bool{}
	out := []string{"All"}
	for _, p := range c.Blog.Posts {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// FeaturedPost devuelve el primer post destacado, si existe.
func (c *Catalog) FeaturedPost() (BlogPost, bool) {
	for _, p := range c.Blog.Posts {
		if p.Featured {
			return p, true
		}
	}
	return BlogPost{}, false
}

// SearchPosts filtra por texto (título, extracto, tags) y categoría ("All" o vacío = todas).
func (c *Catalog) SearchPosts(query, category string) []BlogPost {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]BlogPost, 0, len(c.Blog.Posts))
	for _, p := range c.Blog.Posts {
		if category != "" && category != "All" && p.Category != category {
			continue
		}
		if q != "" && !containsFold(q, p.Title, p.Excerpt) && !anyContainsFold(q, p.Tags) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Filtros de precio que acepta SearchModels.
const (
	PriceAll  = "all"
	PriceFree = "free"
	PricePaid = "paid"
)

// SearchModels filtra el marketplace por texto (título, creador, tags) y precio.
func (c *Catalog) SearchModels(query, price string) []MarketplaceModel {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]MarketplaceModel, 0, len(c.Marketplace.Models))
	for _, m := range c.Marketplace.Models {
		switch price {
		case PriceFree:
			if m.Price != 0 {
				continue
			}
		case PricePaid:
			if m.Price <= 0 {
				continue
			}
		}
		if q != "" && !containsFold(q, m.Title, m.Creator) && !anyContainsFold(q, m.Tags) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// BlogListing es el listado del blog tal como se muestra.
type BlogListing struct {
	Featured *BlogPost
	Posts    []BlogPost
}

// BlogPage arma el listado: el destacado solo aparece sin búsqueda y en "All",
// y nunca se repite entre los posts regulares.
func (c *Catalog) BlogPage(query, category string) BlogListing {
	var out BlogListing
	for _, p := range c.SearchPosts(query, category) {
		if !p.Featured {
			out.Posts = append(out.Posts, p)
		}
	}
	if out.Posts == nil {
		out.Posts = []BlogPost{}
	}
	if query == "" && (category == "" || category == "All") {
		if featured, ok := c.FeaturedPost(); ok {
			out.Featured = &featured
		}
	}
	return out
}

// Pestañas del marketplace.
const (
	TabProducts = "products"
	TabCreators = "creators"
	TabAgencies = "agencies"
)

// Categorías de la página explore.
const (
	ExploreTrending = "trending"
	ExploreRecent   = "recent"
	ExploreFeatured = "featured"
	ExplorePopular  = "popular"
)

const (
	exploreFeaturedRating = 4.8
	explorePopularViews   = 15000
)

// ExploreCategories devuelve las categorías en el orden de las pestañas.
func ExploreCategories() []string {
	return []string{ExploreTrending, ExploreRecent, ExploreFeatured, ExplorePopular}
}

// SearchExplore filtra por texto (título, creador, tags) y categoría.
// Una categoría desconocida se comporta como "recent": sin filtro extra.
func (c *Catalog) SearchExplore(query, category string) []ExploreModel {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]ExploreModel, 0, len(c.Explore.Models))
	for _, m := range c.Explore.Models {
		if q != "" && !containsFold(q, m.Title, m.Creator) && !anyContainsFold(q, m.Tags) {
			continue
		}
		switch category {
		case ExploreTrending:
			if !m.Trending {
				continue
			}
		case ExploreFeatured:
			if m.Rating < exploreFeaturedRating {
				continue
			}
		case ExplorePopular:
			if m.Views <= explorePopularViews {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func anyContainsFold(q string, values []string) bool {
	return containsFold(q, values...)
}
