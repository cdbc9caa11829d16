package ratelimit

import (
	"context"

	"github.com/tech-arch1tect/invitegate/config"
	"go.uber.org/fx"
)

func ProvideRateLimitStore(lc fx.Lifecycle, cfg *config.Config) Store {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	store := NewMemoryStore(cfg.RateLimit.Rate, cfg.RateLimit.Period, cfg.RateLimit.Burst)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			store.Close()
			return nil
		},
	})
	return store
}
