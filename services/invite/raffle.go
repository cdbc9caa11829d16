package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Draw returns the current raffle token, rotating it once the period has elapsed.
// Within a period an unconsumed token is returned again; once it has been consumed
// the result is empty until the period ends.
func (s *Service) Draw(ctx context.Context) (string, error) {
	storeCtx, cancel := s.storageContext(ctx)
	defer cancel()

	now := s.clock()
	current, err := s.store.CurrentRaffle(storeCtx)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		s.logger.Error("raffle lookup failed", zap.Error(err))
		return "", storageError("find raffle token", err)
	}

	if current != nil && now.Sub(current.CreatedAt) < s.config.RafflePeriod {
		return s.currentRaffleToken(current, now), nil
	}

	value, err := generateToken()
	if err != nil {
		s.logger.Error("failed to generate raffle token", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrTokenGenerationFailed, err)
	}

	expiresAt := now.Add(s.config.RafflePeriod)
	token := &InviteToken{
		Token:     value,
		MaxUses:   1,
		Active:    true,
		Raffle:    true,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: &expiresAt,
	}

	if err := s.store.ReplaceRaffle(storeCtx, token); err != nil {
		if errors.Is(err, ErrRaffleConflict) {
			return s.drawAfterConflict(storeCtx, now)
		}
		s.logger.Error("failed to rotate raffle token", zap.Error(err))
		return "", storageError("rotate raffle token", err)
	}

	s.logger.Info("raffle token rotated", tokenField(token.Token), zap.Time("expires_at", expiresAt))
	s.emit(ctx, nil, ActionRaffleDrawn,
		"A new raffle invite token was issued",
		map[string]any{
			"token":      token.Token,
			"created_at": now,
			"expires_at": expiresAt,
			"max_uses":   token.MaxUses,
		})
	return token.Token, nil
}

func (s *Service) currentRaffleToken(current *InviteToken, now time.Time) string {
	if current.Eligible(now) {
		return current.Token
	}
	s.logger.Debug("raffle token already claimed this period",
		tokenField(current.Token),
		zap.Time("next_rotation", current.CreatedAt.Add(s.config.RafflePeriod)))
	return ""
}

// drawAfterConflict returns the token minted by the concurrent rotation that won.
func (s *Service) drawAfterConflict(ctx context.Context, now time.Time) (string, error) {
	winner, err := s.store.CurrentRaffle(ctx)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return "", nil
		}
		return "", storageError("find raffle token", err)
	}
	s.logger.Debug("raffle rotation lost to a concurrent draw", tokenField(winner.Token))
	return s.currentRaffleToken(winner, now), nil
}
