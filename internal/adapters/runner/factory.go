package runner

import (
	"EventBus/internal/core/ports"
	"EventBus/internal/shared/config"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Runner kinds accepted by New.
const (
	KindSync     = "sync"
	KindWorker   = "worker"
	KindDeferred = "deferred"
	KindPool     = "pool"
)

// CloseFunc releases the goroutines owned by a runner.
type CloseFunc func(ctx context.Context) error

// New builds the main runner described by cfg.
func New(cfg *config.RunnerConfig, baseLogger *zerolog.Logger) (ports.Runner, CloseFunc, error) {
	log := baseLogger.With().Str("component", "runner_factory").Logger()

	switch cfg.Kind {
	case KindSync:
		log.Info().Str("kind", cfg.Kind).Msg("Using synchronous runner")
		return Sync{}, func(context.Context) error { return nil }, nil
	case KindWorker:
		w := NewWorker(baseLogger)
		log.Info().Str("kind", cfg.Kind).Msg("Started single worker runner")
		return w, w.Close, nil
	case KindDeferred:
		w := NewWorker(baseLogger, WithDelay(cfg.DeferredDelay))
		log.Info().Str("kind", cfg.Kind).Dur("delay", cfg.DeferredDelay).Msg("Started deferred worker runner")
		return w, w.Close, nil
	case KindPool:
		p := NewPool(cfg.PoolSize, baseLogger)
		log.Info().Str("kind", cfg.Kind).Int("workers", p.Size()).Msg("Started worker pool runner")
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
