package invite

import (
	"time"
)

// InviteToken gates account registration. Uses only grows; Active never returns to
// true once the token is exhausted, expired or disabled.
type InviteToken struct {
	Token     string     `json:"token" gorm:"primaryKey;size:36"`
	CreatedBy *uint      `json:"created_by" gorm:"index"`
	Uses      int        `json:"uses" gorm:"not null;check:chk_invite_tokens_uses,uses >= 0 AND uses <= max_uses"`
	MaxUses   int        `json:"max_uses" gorm:"not null;check:chk_invite_tokens_max_uses,max_uses > 0"`
	Active    bool       `json:"active" gorm:"not null;index"`
	Raffle    bool       `json:"raffle" gorm:"not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"index"`
}

func (InviteToken) TableName() string {
	return "invite_tokens"
}

func (t *InviteToken) Exhausted() bool {
	return t.Uses >= t.MaxUses
}

func (t *InviteToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

// Eligible reports whether the token can still be consumed at now.
func (t *InviteToken) Eligible(now time.Time) bool {
	return t.Active && !t.Exhausted() && !t.Expired(now)
}

// MasterToken is an unlimited credential, checked only when no InviteToken matches.
type MasterToken struct {
	Token     string    `json:"token" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
}

func (MasterToken) TableName() string {
	return "master_tokens"
}

const (
	ActionCreated     = "invite.created"
	ActionDisabled    = "invite.disabled"
	ActionConsumed    = "invite.consumed"
	ActionRaffleDrawn = "invite.raffle_drawn"
)

type CreateRequest struct {
	ExpiresAt *time.Time
	MaxUses   int
	Email     string
}

type ListFilter struct {
	Active *bool
	Raffle *bool
	Limit  int
	Offset int
}

// Result is the outcome of Validate. Reason is empty when Eligible.
type Result struct {
	Eligible bool
	IsMaster bool
	Reason   Reason
	Token    *InviteToken
}

func (r Result) ExpiresAt() *time.Time {
	if r.Token == nil {
		return nil
	}
	return r.Token.ExpiresAt
}
