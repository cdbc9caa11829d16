package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tech-arch1tect/invitegate/services/identity"
)

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, actor *identity.Actor, action, description string, metadata map[string]any) error {
	args := m.Called(ctx, actor, action, description, metadata)
	return args.Error(0)
}

type MockInviteNotifier struct {
	mock.Mock
}

func (m *MockInviteNotifier) SendInvite(ctx context.Context, to, token string, expiresAt *time.Time) error {
	args := m.Called(ctx, to, token, expiresAt)
	return args.Error(0)
}
