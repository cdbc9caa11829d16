package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/invitegate/services/identity"
	"go.uber.org/zap"
)

// Disable deactivates a still-eligible token. A token that is already unusable is
// rejected with the reason it is unusable, exhaustion first.
func (s *Service) Disable(ctx context.Context, actor *identity.Actor, candidate string) (*InviteToken, error) {
	candidate = normalize(candidate)
	if !WellFormed(candidate) {
		return nil, ErrInvalidFormat
	}

	storeCtx, cancel := s.storageContext(ctx)
	defer cancel()

	now := s.clock()
	token, err := s.store.FindByToken(storeCtx, candidate)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		s.logger.Error("invite token lookup failed", tokenField(candidate), zap.Error(err))
		return nil, storageError("find invite token", err)
	}

	if err := disableRejection(token, now); err != nil {
		s.logger.Warn("invite token disable rejected", tokenField(candidate), zap.Error(err))
		return nil, err
	}

	affected, err := s.store.Deactivate(storeCtx, candidate, now)
	if err != nil {
		s.logger.Error("invite token disable failed", tokenField(candidate), zap.Error(err))
		return nil, storageError("disable invite token", err)
	}
	if affected == 0 {
		// Lost a race with a consumer or another disable; report the state that won.
		fresh, err := s.store.FindByToken(storeCtx, candidate)
		if err != nil {
			s.logger.Error("invite token re-read after disable race failed", tokenField(candidate), zap.Error(err))
			return nil, storageError("find invite token", err)
		}
		if rejection := disableRejection(fresh, now); rejection != nil {
			return nil, rejection
		}
		return nil, ErrAlreadyDisabled
	}

	token.Active = false
	token.UpdatedAt = now

	s.logger.Info("invite token disabled", tokenField(candidate))
	s.emit(ctx, actor, ActionDisabled,
		fmt.Sprintf("Invite token %s was disabled", candidate),
		map[string]any{
			"token":       candidate,
			"uses":        token.Uses,
			"max_uses":    token.MaxUses,
			"disabled_at": now,
		})
	return token, nil
}

func disableRejection(token *InviteToken, now time.Time) error {
	switch {
	case token.Exhausted():
		return ErrAlreadyExhausted
	case !token.Active:
		return ErrAlreadyDisabled
	case token.Expired(now):
		return ErrAlreadyExpired
	default:
		return nil
	}
}
