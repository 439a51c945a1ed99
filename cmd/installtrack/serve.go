package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/solarops/installation-tracker/internal/api"
	"github.com/solarops/installation-tracker/internal/core/service"
	"github.com/solarops/installation-tracker/internal/infrastructure/config"
	"github.com/solarops/installation-tracker/internal/infrastructure/db/jsonfile"
	redisstore "github.com/solarops/installation-tracker/internal/infrastructure/db/redis"
	"github.com/solarops/installation-tracker/internal/infrastructure/http/handlers"
	"github.com/solarops/installation-tracker/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until SIGINT or SIGTERM.

Configuration comes from the environment (and a .env file when present).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	opts := logger.ForEnvironment(cfg.EnvName(), cfg.LogLevel)
	opts.Service = "installtrack"
	log := logger.Init(opts)

	ttl, err := cfg.TokenTTL()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set, authentication requests will fail until it is configured")
	}

	static, err := service.NewStaticUsers(staticCredentials(os.Environ()), bcrypt.DefaultCost, log)
	if err != nil {
		return err
	}
	authSvc := service.NewAuthService(jsonfile.NewUserRepository(cfg.UsersFile()), static, service.AuthConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  ttl,
	})

	repo := jsonfile.NewInstallationRepository(jsonfile.Config{
		SharedFile: cfg.SharedFile(),
		UserDir:    cfg.Storage.InstallationDir,
		Env:        cfg.EnvName(),
		PerUser:    cfg.Storage.PerUser,
	}, log)

	rdb, err := redisstore.Open(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, bulk import keys disabled")
		rdb = nil
	}
	var guard service.ImportGuard
	if rdb != nil {
		defer rdb.Close()
		guard = redisstore.NewImportGuard(rdb)
	}

	e := api.NewRouter(api.Dependencies{
		Installations: service.NewInstallationService(repo, guard, log),
		Auth:          authSvc,
		Tokens:        authSvc,
		Readiness:     handlers.NewHealthDependenciesHandler(rdb, filepath.Dir(cfg.SharedFile()), cfg.Storage.InstallationDir),
		AdminAPIKey:   cfg.Auth.AdminAPIKey,
		AllowedOrigin: cfg.AllowedOrigin(),
		Production:    cfg.IsProduction(),
		Logger:        log,
	})

	return serve(ctx, e, ":"+cfg.Port, log)
}

type starter interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// serve blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func serve(ctx context.Context, srv starter, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func staticCredentials(environ []string) []service.StaticCredential {
	creds := config.StaticUserCredentials(environ)
	out := make([]service.StaticCredential, 0, len(creds))
	for _, c := range creds {
		out = append(out, service.StaticCredential{Index: c.Index, Username: c.Username, Password: c.Password})
	}
	return out
}
