package invite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/identity"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/zap"
)

const TokenLength = 36

// Recorder receives one audit event per state change.
type Recorder interface {
	Record(ctx context.Context, actor *identity.Actor, action, description string, metadata map[string]any) error
}

// Notifier delivers a freshly created token to an e-mail address.
type Notifier interface {
	SendInvite(ctx context.Context, to, token string, expiresAt *time.Time) error
}

type Service struct {
	config   *config.InviteConfig
	store    Store
	logger   *logging.Service
	recorder Recorder
	notifier Notifier
	now      func() time.Time
}

func NewService(cfg *config.Config, store Store, logger *logging.Service) *Service {
	logger.Info("initializing invite service",
		zap.Int("default_max_uses", cfg.Invite.DefaultMaxUses),
		zap.Duration("raffle_period", cfg.Invite.RafflePeriod),
		zap.Duration("storage_timeout", cfg.Invite.StorageTimeout))

	return &Service{
		config: &cfg.Invite,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) SetRecorder(recorder Recorder) {
	s.recorder = recorder
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// SetClock replaces the time source; all timestamps are stored in UTC.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.StorageTimeout)
}

func (s *Service) emit(ctx context.Context, actor *identity.Actor, action, description string, metadata map[string]any) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), actor, action, description, metadata); err != nil {
		s.logger.Error("failed to emit audit event",
			zap.String("action", action),
			zap.Error(err))
	}
}

func normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

func generateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ToUpper(id.String()), nil
}

// tokenField logs only a prefix of a token.
func tokenField(token string) zap.Field {
	if len(token) > 8 {
		token = token[:8] + "..."
	}
	return zap.String("token", token)
}

func actorID(actor *identity.Actor) *uint {
	if actor == nil {
		return nil
	}
	id := actor.ID
	return &id
}
