package invite

import (
	"context"
	"fmt"

	"github.com/tech-arch1tect/invitegate/services/identity"
	"go.uber.org/zap"
)

// Consume records one use against a standard token. It returns false, without error,
// when the guarded update matched no row: the token is unknown, a master token, or
// stopped being eligible since it was validated.
func (s *Service) Consume(ctx context.Context, actor *identity.Actor, candidate string) (bool, error) {
	candidate = normalize(candidate)
	if !WellFormed(candidate) {
		return false, nil
	}

	storeCtx, cancel := s.storageContext(ctx)
	defer cancel()

	now := s.clock()
	affected, err := s.store.ConditionalIncrement(storeCtx, candidate, now)
	if err != nil {
		s.logger.Error("invite token consumption failed", tokenField(candidate), zap.Error(err))
		return false, storageError("consume invite token", err)
	}
	if affected == 0 {
		s.logger.Warn("invite token no longer eligible at consumption", tokenField(candidate))
		return false, nil
	}

	s.logger.Info("invite token consumed", tokenField(candidate))
	s.emit(ctx, actor, ActionConsumed,
		fmt.Sprintf("Invite token %s was used", candidate),
		map[string]any{
			"token":       candidate,
			"consumed_at": now,
		})
	return true, nil
}

// ValidateAndConsume is the registration path: a standard token is validated and
// then consumed through the guarded update, so a lost race reports TokenExpired.
// Master tokens are accepted without any write.
func (s *Service) ValidateAndConsume(ctx context.Context, actor *identity.Actor, candidate string) (Result, error) {
	result, err := s.Validate(ctx, candidate)
	if err != nil || !result.Eligible || result.IsMaster {
		return result, err
	}

	consumed, err := s.Consume(ctx, actor, candidate)
	if err != nil {
		return Result{}, err
	}
	if !consumed {
		return Result{Reason: ReasonTokenExpired, Token: result.Token}, nil
	}

	token := *result.Token
	token.Uses++
	token.Active = token.Uses < token.MaxUses
	result.Token = &token
	return result, nil
}
