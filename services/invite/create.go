package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/invitegate/services/identity"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func (s *Service) Create(ctx context.Context, actor *identity.Actor, req CreateRequest) (*InviteToken, error) {
	now := s.clock()

	maxUses := req.MaxUses
	if maxUses == 0 {
		maxUses = s.config.DefaultMaxUses
	}
	if maxUses < 1 || maxUses > s.config.MaxUsesLimit {
		return nil, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidMaxUses, s.config.MaxUsesLimit)
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(now) {
			return nil, ErrInvalidExpiry
		}
		utc := req.ExpiresAt.UTC()
		expiresAt = &utc
	}

	value, err := generateToken()
	if err != nil {
		s.logger.Error("failed to generate invite token", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTokenGenerationFailed, err)
	}

	token := &InviteToken{
		Token:     value,
		CreatedBy: actorID(actor),
		MaxUses:   maxUses,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
	}

	storeCtx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.store.Insert(storeCtx, token); err != nil {
		s.logger.Error("failed to store invite token", zap.Error(err))
		return nil, storageError("create invite token", err)
	}

	s.logger.Info("invite token created",
		tokenField(token.Token),
		zap.Int("max_uses", maxUses),
		zap.Timep("expires_at", expiresAt))

	s.emit(ctx, actor, ActionCreated,
		fmt.Sprintf("Invite token %s was created", token.Token),
		map[string]any{
			"token":      token.Token,
			"max_uses":   maxUses,
			"created_at": now,
			"expires_at": expiresAt,
		})

	if req.Email != "" && s.notifier != nil {
		if err := s.notifier.SendInvite(context.WithoutCancel(ctx), req.Email, token.Token, expiresAt); err != nil {
			s.logger.Error("failed to send invite e-mail", tokenField(token.Token), zap.Error(err))
		}
	}

	return token, nil
}

func (s *Service) Get(ctx context.Context, candidate string) (*InviteToken, error) {
	candidate = normalize(candidate)
	if !WellFormed(candidate) {
		return nil, ErrInvalidFormat
	}

	storeCtx, cancel := s.storageContext(ctx)
	defer cancel()

	token, err := s.store.FindByToken(storeCtx, candidate)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, storageError("find invite token", err)
	}
	return token, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]InviteToken, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	filter.Limit = min(filter.Limit, maxListLimit)
	filter.Offset = max(filter.Offset, 0)

	storeCtx, cancel := s.storageContext(ctx)
	defer cancel()

	tokens, total, err := s.store.List(storeCtx, filter)
	if err != nil {
		s.logger.Error("failed to list invite tokens", zap.Error(err))
		return nil, 0, storageError("list invite tokens", err)
	}
	return tokens, total, nil
}
