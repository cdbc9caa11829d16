package invite

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat         = errors.New("invite token has an invalid format")
	ErrTokenInvalid          = errors.New("invite token is invalid")
	ErrTokenExpired          = errors.New("invite token has expired")
	ErrMaxUsesExceeded       = errors.New("invite token has reached its maximum uses")
	ErrTokenNotFound         = errors.New("invite token not found")
	ErrAlreadyDisabled       = errors.New("invite token is already disabled")
	ErrAlreadyExhausted      = errors.New("invite token has already been used up")
	ErrAlreadyExpired        = errors.New("invite token has already expired")
	ErrInvalidExpiry         = errors.New("expiry must be in the future")
	ErrInvalidMaxUses        = errors.New("max uses is out of range")
	ErrStorage               = errors.New("invite storage error")
	ErrStorageTimeout        = errors.New("invite storage timed out")
	ErrRaffleConflict        = errors.New("another raffle token was issued concurrently")
	ErrTokenGenerationFailed = errors.New("failed to generate invite token")
)

// Reason is the machine-readable code returned for an ineligible token.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonInvalidFormat   Reason = "invalid_format"
	ReasonTokenInvalid    Reason = "token_invalid"
	ReasonTokenExpired    Reason = "token_expired"
	ReasonMaxUsesExceeded Reason = "max_uses_exceeded"
)

func (r Reason) Err() error {
	switch r {
	case ReasonInvalidFormat:
		return ErrInvalidFormat
	case ReasonTokenInvalid:
		return ErrTokenInvalid
	case ReasonTokenExpired:
		return ErrTokenExpired
	case ReasonMaxUsesExceeded:
		return ErrMaxUsesExceeded
	default:
		return nil
	}
}

func storageError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
