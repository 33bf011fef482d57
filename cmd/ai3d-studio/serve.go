package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ai3d-studio/internal/catalog"
	"ai3d-studio/internal/config"
	"ai3d-studio/internal/db"
	apihttp "ai3d-studio/internal/http"
	"ai3d-studio/internal/oauth"
	"ai3d-studio/internal/repository"
	"ai3d-studio/internal/service"
)

const (
	oauthStateTTL   = 5 * time.Minute
	sseHeartbeat    = 25 * time.Second
	shutdownTimeout = 10 * time.Second
)

var (
	servePort    string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Levanta el servidor HTTP. Si REDIS_ADDR responde, las credenciales, el limitador
de intentos y las sesiones del proveedor se comparten entre instancias y los cambios
hechos en otra instancia se reenvían a las pestañas conectadas a esta.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (overrides HTTP_PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply the database schema before serving")
}

// backing agrupa las implementaciones elegidas según haya o no Redis.
type backing struct {
	store    service.CredentialStore
	limiter  service.SignInLimiter
	sessions service.ProviderSessionStore
	relay    *service.CredentialRelay
	redis    *redis.Client
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.HTTPPort = servePort
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error("db connect", zap.Error(err))
		return err
	}
	defer pool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	err = db.Ping(pingCtx, pool)
	cancelPing()
	if err != nil {
		logger.Error("db ping", zap.Error(err))
		return err
	}

	if serveMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Error("db migrate", zap.Error(err))
			return err
		}
	}

	content, err := catalog.Load()
	if err != nil {
		logger.Error("catalog load", zap.Error(err))
		return err
	}

	bus := service.NewAuthEventBus()
	b := newBacking(ctx, cfg, logger, bus)
	if b.redis != nil {
		defer b.redis.Close()
	}

	stateSecret := cfg.StateSecret
	if stateSecret == "" {
		logger.Warn("state secret not configured, using an ephemeral one")
		stateSecret = uuid.NewString() + uuid.NewString()
	}
	states := service.NewOAuthStateService(stateSecret, oauthStateTTL)

	providers := newProviders(ctx, cfg, logger)
	router := newRouter(cfg, logger, pool, b, bus, states, providers, content)

	g, gctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// Los streams SSE terminan cuando se cancela gctx.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.Strings("oauth_providers", providers.Names()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if b.relay != nil {
		g.Go(func() error {
			if err := b.relay.Run(gctx, nil); err != nil {
				logger.Warn("credential relay stopped", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	return nil
}

func newBacking(ctx context.Context, cfg *config.Config, logger *zap.Logger, bus *service.AuthEventBus) backing {
	b := backing{
		store:    service.NewMemoryCredentialStore(),
		limiter:  service.NewSignInLimiter(cfg.SignInFailureWindow, cfg.SignInMaxFailures),
		sessions: service.NewMemoryProviderSessionStore(),
	}
	if cfg.RedisAddr == "" {
		return b
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		_ = client.Close()
		return b
	}

	instanceID := uuid.NewString()
	b.redis = client
	b.store = service.NewRedisCredentialStore(client, logger, instanceID)
	b.limiter = service.NewRedisSignInLimiter(client, cfg.SignInFailureWindow, cfg.SignInMaxFailures)
	b.sessions = service.NewRedisProviderSessionStore(client)
	b.relay = service.NewCredentialRelay(client, bus, logger, instanceID)
	logger.Info("redis backing enabled", zap.String("instance", instanceID))
	return b
}

func newProviders(ctx context.Context, cfg *config.Config, logger *zap.Logger) *oauth.Registry {
	var list []oauth.Provider

	if cfg.GoogleClientID != "" {
		google, err := oauth.NewGoogle(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL("google"))
		if err != nil {
			logger.Warn("google provider init failed", zap.Error(err))
		} else {
			list = append(list, google)
		}
	}
	if cfg.GitHubClientID != "" {
		github, err := oauth.NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.OAuthRedirectURL("github"))
		if err != nil {
			logger.Warn("github provider init failed", zap.Error(err))
		} else {
			list = append(list, github)
		}
	}

	return oauth.NewRegistry(list...)
}

func newRouter(
	cfg *config.Config,
	logger *zap.Logger,
	pool *pgxpool.Pool,
	b backing,
	bus *service.AuthEventBus,
	states *service.OAuthStateService,
	providers *oauth.Registry,
	content *catalog.Catalog,
) http.Handler {
	userRepo := repository.NewPgUserRepository(pool)
	directory := service.NewDirectoryService(logger, userRepo, service.DirectoryOptions{
		Limiter:    b.limiter,
		Sessions:   b.sessions,
		SessionTTL: cfg.ProviderSessionTTL,
	})
	identity := service.NewIdentityAdapter(logger, directory, providers, b.store, bus)
	guard := service.NewPageGuard(b.store, bus)

	authHandler := apihttp.NewAuthHandler(logger, identity, states, cfg.CookieSecure)
	pageHandler := apihttp.NewPageHandler(logger, b.store, bus, content, providers)
	eventsHandler := apihttp.NewEventsHandler(logger, b.store, bus, guard, sseHeartbeat)

	return apihttp.NewRouter(logger, cfg.CookieSecure, guard, authHandler, pageHandler, eventsHandler)
}
