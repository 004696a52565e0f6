package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellogate/internal/config"
	"github.com/dropDatabas3/hellogate/internal/email"
	"github.com/dropDatabas3/hellogate/internal/gateway"
	"github.com/dropDatabas3/hellogate/internal/httpx"
	"github.com/dropDatabas3/hellogate/internal/httpx/handlers"
	"github.com/dropDatabas3/hellogate/internal/identity"
	"github.com/dropDatabas3/hellogate/internal/jwt"
	"github.com/dropDatabas3/hellogate/internal/observability/logger"
	"github.com/dropDatabas3/hellogate/internal/rate"
	"github.com/dropDatabas3/hellogate/internal/store"
	"github.com/dropDatabas3/hellogate/internal/workos"
	pgmigrations "github.com/dropDatabas3/hellogate/migrations/postgres"
)

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el gateway HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.App.LogLevel,
				ServiceName: "hellogate",
			})
			defer func() { _ = logger.Sync() }()

			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Named("serve")

	// storage
	st, err := store.New(ctx, store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN})
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer st.Close()

	var pool *pgxpool.Pool
	if pg, ok := st.(*store.PGStore); ok {
		pool = pg.Pool()
		if cfg.Flags.Migrate {
			if err := store.Migrate(ctx, pool, pgmigrations.FS, pgmigrations.Dir); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations_applied")
		}
	}

	// IdP + tokens
	idp := workos.New(
		cfg.WorkOS.APIBase,
		cfg.WorkOS.ClientID,
		cfg.WorkOS.APIKey,
		config.MustDuration(cfg.WorkOS.Timeout, 10*time.Second),
	)
	issuer, err := jwt.NewIssuer(
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SigningSeed,
		config.MustDuration(cfg.JWT.AccessTTL, time.Hour),
		config.MustDuration(cfg.JWT.RefreshTTL, 168*time.Hour),
	)
	if err != nil {
		return err
	}
	if cfg.JWT.SigningSeed == "" {
		log.Warn("jwt_ephemeral_key", logger.String("hint", "seteá JWT_SIGNING_SEED en prod"))
	}

	// welcome mail (opcional)
	var mailer email.Sender
	if cfg.Email.WelcomeEnabled && cfg.SMTP.Host != "" {
		s := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		s.TLSMode = cfg.SMTP.TLS
		s.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		mailer = s
	}

	gw := &gateway.Gateway{
		IdP:            idp,
		Reconciler:     identity.NewReconciler(st),
		Issuer:         issuer,
		CookiePassword: cfg.WorkOS.CookiePassword,
		APIBase:        cfg.WorkOS.APIBase,
		FallbackURL:    cfg.Auth.FallbackLoginURL,
		Mailer:         mailer,
		AppName:        "hellogate",
	}

	// rate limit (opcional, fail-open)
	var limiter rate.Limiter
	if cfg.Rate.Enabled && cfg.Rate.Redis.Addr != "" {
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Rate.Redis.Addr,
			Password: cfg.Rate.Redis.Password,
			DB:       cfg.Rate.Redis.DB,
		})
		defer client.Close()
		limiter = rate.NewRedisLimiter(
			client,
			cfg.Rate.Redis.Prefix,
			cfg.Rate.MaxRequests,
			config.MustDuration(cfg.Rate.Window, time.Minute),
		)
	}

	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{
		GlobalPool: func() *pgxpool.Pool { return pool },
	})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var ping func(ctx context.Context) error
	if pool != nil {
		ping = pool.Ping
	}

	handler := httpx.NewRouter(httpx.RouterConfig{
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Limiter:     limiter,
		Metrics:     metricsHandler,
		Auth:        &handlers.CallbackHandler{GW: gw},
		Logout: &handlers.LogoutHandler{
			GW:           gw,
			CookieName:   cfg.Auth.CookieName,
			CookieDomain: cfg.Auth.CookieDomain,
			SameSite:     cfg.Auth.SameSite,
			Secure:       cfg.Auth.Secure,
		},
		Hello:  &handlers.HelloHandler{Issuer: issuer},
		Health: &handlers.HealthHandler{Ping: ping},
	})

	srv := httpx.NewServer(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Server.Addr), logger.String("driver", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting_down")
		return httpx.Shutdown(srv, 10*time.Second)
	})
	return g.Wait()
}
