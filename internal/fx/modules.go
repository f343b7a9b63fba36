package fx

import (
	"math/rand"

	"octane-arena/internal/config"
	"octane-arena/internal/database"
	"octane-arena/internal/logger"
	"octane-arena/internal/match"
	"octane-arena/internal/notify"
	"octane-arena/internal/queue"
	"octane-arena/internal/registry"
	"octane-arena/internal/scheduler"
	"octane-arena/internal/server"
	"octane-arena/internal/service"
	"octane-arena/internal/store"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideDispatcher picks the outbound channel: a webhook when one is
// configured, a log sink otherwise.
func ProvideDispatcher(cfg *config.Config, log zerolog.Logger) notify.Dispatcher {
	if cfg.WebhookURL != "" {
		return notify.NewWebhookDispatcher(cfg.WebhookURL, log)
	}
	return notify.NewLogDispatcher(log)
}

func ProvideRand(cfg *config.Config) *rand.Rand {
	return cfg.Rand()
}

func ProvideStore(s *store.SQLiteStore) store.Store {
	return s
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// once config is known, rebuild the logger at the configured level
	fx.Decorate(func(base zerolog.Logger, cfg *config.Config) zerolog.Logger {
		return logger.WithLevel(base, cfg.LogLevel)
	}),
	fx.Provide(database.New),
	// persistence
	fx.Provide(store.NewSQLiteStore),
	fx.Provide(ProvideStore),
	// state
	fx.Provide(registry.New),
	fx.Provide(queue.NewManager),
	fx.Provide(match.NewLifecycle),
	// outbound
	fx.Provide(ProvideDispatcher),
	fx.Provide(ProvideRand),
	// svc
	fx.Provide(service.NewMatchmaking),
	// periodic jobs and status API
	fx.Provide(scheduler.New),
	fx.Provide(server.NewArenaServer),
)
