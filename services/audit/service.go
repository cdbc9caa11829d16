package audit

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/identity"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrQueueFull = errors.New("audit queue is full")
	ErrClosed    = errors.New("audit service is stopped")
)

// Service is an asynchronous audit sink. Record only enqueues; a single worker
// writes entries to the audit_logs table in the order they were accepted.
type Service struct {
	db           *gorm.DB
	logger       *logging.Service
	writeTimeout time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	queue   chan AuditLog
	closed  bool
	started bool
	done    chan struct{}
}

func NewService(cfg *config.AuditConfig, db *gorm.DB, logger *logging.Service) *Service {
	bufferSize := cfg.BufferSize
	if bufferSize < 1 {
		bufferSize = 1
	}

	logger.Info("initializing audit service",
		zap.Int("buffer_size", bufferSize),
		zap.Duration("write_timeout", cfg.WriteTimeout))

	return &Service{
		db:           db,
		logger:       logger,
		writeTimeout: cfg.WriteTimeout,
		now:          time.Now,
		queue:        make(chan AuditLog, bufferSize),
		done:         make(chan struct{}),
	}
}

// Record enqueues one event without waiting for it to be written.
func (s *Service) Record(ctx context.Context, actor *identity.Actor, action, description string, metadata map[string]any) error {
	entry := AuditLog{
		Action:      action,
		Description: description,
		Metadata:    maps.Clone(metadata),
		CreatedAt:   s.now().UTC(),
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}
	if actor != nil {
		id := actor.ID
		entry.ActorID = &id
		entry.ActorEmail = actor.Email
		entry.ActorName = actor.Name
	}
	if client, ok := ClientFromContext(ctx); ok {
		entry.Metadata["client"] = client.metadata()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	select {
	case s.queue <- entry:
		return nil
	default:
		s.logger.Warn("audit queue full, dropping event", zap.String("action", action))
		return ErrQueueFull
	}
}

func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.closed {
		return
	}
	s.started = true
	go s.run()
}

// Stop refuses new events and waits for the queue to drain, or for ctx to end.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	started := s.started
	s.mu.Unlock()

	if !started {
		go s.run()
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.logger.Warn("audit queue not drained before shutdown", zap.Int("pending", len(s.queue)))
		return ctx.Err()
	}
}

func (s *Service) run() {
	defer close(s.done)

	for entry := range s.queue {
		if err := s.write(entry); err != nil {
			s.logger.Error("failed to write audit log",
				zap.String("action", entry.Action),
				zap.Error(err))
		}
	}
}

func (s *Service) write(entry AuditLog) error {
	ctx := context.Background()
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}
