package invite

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SweepExpired deactivates every active token whose expiry has passed.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	storeCtx, cancel := s.storageContext(ctx)
	defer cancel()

	affected, err := s.store.ExpireStale(storeCtx, s.clock())
	if err != nil {
		s.logger.Error("failed to deactivate expired invite tokens", zap.Error(err))
		return 0, storageError("expire invite tokens", err)
	}
	if affected > 0 {
		s.logger.Info("deactivated expired invite tokens", zap.Int64("count", affected))
	}
	return affected, nil
}

// SeedMasterTokens inserts the configured master tokens; existing ones are kept.
func (s *Service) SeedMasterTokens(ctx context.Context, tokens []string) error {
	storeCtx, cancel := s.storageContext(ctx)
	defer cancel()

	now := s.clock()
	for _, raw := range tokens {
		value := normalize(raw)
		if !WellFormed(value) {
			return ErrInvalidFormat
		}
		if err := s.store.InsertMaster(storeCtx, &MasterToken{Token: value, CreatedAt: now}); err != nil {
			return storageError("seed master token", err)
		}
	}

	if len(tokens) > 0 {
		s.logger.Info("master tokens seeded", zap.Int("count", len(tokens)))
	}
	return nil
}

// Scheduler runs the periodic sweep and raffle draw. A zero interval disables a job.
type Scheduler struct {
	service        *Service
	sweepInterval  time.Duration
	raffleInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(service *Service) *Scheduler {
	return &Scheduler{
		service:        service,
		sweepInterval:  service.config.SweepInterval,
		raffleInterval: service.config.RaffleScheduleInterval,
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.sweepInterval > 0 {
		s.run(ctx, s.sweepInterval, func(ctx context.Context) {
			_, _ = s.service.SweepExpired(ctx)
		})
	}
	if s.raffleInterval > 0 {
		s.run(ctx, s.raffleInterval, func(ctx context.Context) {
			_, _ = s.service.Draw(ctx)
		})
	}

	s.service.logger.Info("invite scheduler started",
		zap.Duration("sweep_interval", s.sweepInterval),
		zap.Duration("raffle_interval", s.raffleInterval))
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, interval time.Duration, job func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job(ctx)
			}
		}
	}()
}
