package invite

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// Injection signatures are rejected before any lookup, independent of the
// parameterised queries underneath.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(select|insert|update|delete|drop|union|alter|truncate|exec|execute)\b`),
	regexp.MustCompile(`--|/\*|\*/|;|'|"|\\|\x00`),
	regexp.MustCompile(`(?i)\b(or|and)\b\s+\S+\s*=\s*\S+`),
	regexp.MustCompile(`(?i)\bxp_\w+`),
	regexp.MustCompile(`(?i)\bsleep\s*\(|\bbenchmark\s*\(|\bwaitfor\s+delay\b`),
	regexp.MustCompile(`[<>]`),
}

func WellFormed(candidate string) bool {
	if len(candidate) != TokenLength {
		return false
	}
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(candidate) {
			return false
		}
	}
	return true
}

// Validate classifies candidate without side effects. The returned error is only
// set for storage failures; ineligible tokens are reported through Result.Reason.
func (s *Service) Validate(ctx context.Context, candidate string) (Result, error) {
	candidate = normalize(candidate)
	if !WellFormed(candidate) {
		s.logger.Warn("invite token rejected: invalid format", zap.Int("length", len(candidate)))
		return Result{Reason: ReasonInvalidFormat}, nil
	}

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	now := s.clock()
	token, err := s.store.FindByToken(ctx, candidate)
	switch {
	case err == nil:
		return s.classify(token, now), nil
	case !errors.Is(err, ErrTokenNotFound):
		s.logger.Error("invite token lookup failed", tokenField(candidate), zap.Error(err))
		return Result{}, storageError("find invite token", err)
	}

	if _, err := s.store.FindMaster(ctx, candidate); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			s.logger.Warn("invite token rejected: unknown token", tokenField(candidate))
			return Result{Reason: ReasonTokenInvalid}, nil
		}
		s.logger.Error("master token lookup failed", tokenField(candidate), zap.Error(err))
		return Result{}, storageError("find master token", err)
	}

	s.logger.Debug("master token accepted", tokenField(candidate))
	return Result{Eligible: true, IsMaster: true}, nil
}

// classify checks exhaustion before the active flag: an exhausted token has also
// been deactivated, and callers are told it is used up rather than expired.
func (s *Service) classify(token *InviteToken, now time.Time) Result {
	result := Result{Token: token}
	switch {
	case token.Exhausted():
		result.Reason = ReasonMaxUsesExceeded
	case !token.Active:
		result.Reason = ReasonTokenExpired
	case token.Expired(now):
		result.Reason = ReasonTokenExpired
	default:
		result.Eligible = true
		return result
	}

	s.logger.Warn("invite token rejected",
		tokenField(token.Token),
		zap.String("reason", string(result.Reason)),
		zap.Int("uses", token.Uses),
		zap.Int("max_uses", token.MaxUses))
	return result
}
