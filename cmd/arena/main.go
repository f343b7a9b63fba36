package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"octane-arena/internal/config"
	"octane-arena/internal/constants"
	fxmodules "octane-arena/internal/fx"
	"octane-arena/internal/scheduler"
	"octane-arena/internal/server"
	"octane-arena/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(run),
	).Run()
}

func run(
	lc fx.Lifecycle,
	arenaServer *server.ArenaServer,
	svc *service.Matchmaking,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      arenaServer.Handler(),
		ReadTimeout:  constants.RequestTimeout,
		WriteTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			svc.LoadState(ctx)
			sched.Start()

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := sched.Shutdown(); err != nil {
				logger.Warn().Err(err).Msg("error stopping scheduler")
			}

			// last snapshot before the database handle closes
			if err := svc.SaveState(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("final snapshot failed")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("stopped gracefully")
			return nil
		},
	})
}
