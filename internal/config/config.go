package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	StateSecret  string `env:"STATE_SECRET"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`

	ProviderSessionTTL  time.Duration `env:"PROVIDER_SESSION_TTL" envDefault:"720h"`
	SignInMaxFailures   int           `env:"SIGNIN_MAX_FAILURES" envDefault:"5"`
	SignInFailureWindow time.Duration `env:"SIGNIN_FAILURE_WINDOW" envDefault:"15m"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// OAuthRedirectURL arma la URL de callback para un proveedor OAuth.
func (c *Config) OAuthRedirectURL(provider string) string {
	return c.PublicBaseURL + "/auth/oauth/callback/" + provider
}
