package invite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/invitegate/testutils"
	"gorm.io/gorm"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	service  *Service
	db       *gorm.DB
	clock    *testClock
	recorder *testutils.MockAuditRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutils.SetupTestDB(t, Models()...)
	require.NoError(t, Migrate(db))

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	recorder := &testutils.MockAuditRecorder{}
	recorder.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	service := NewService(testutils.GetTestConfig(), NewGormStore(db), nil)
	service.SetClock(clock.Now)
	service.SetRecorder(recorder)

	return &fixture{service: service, db: db, clock: clock, recorder: recorder}
}

func (f *fixture) insert(t *testing.T, token InviteToken) *InviteToken {
	t.Helper()

	if token.Token == "" {
		value, err := generateToken()
		require.NoError(t, err)
		token.Token = value
	}
	if token.MaxUses == 0 {
		token.MaxUses = 1
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = f.clock.Now()
		token.UpdatedAt = token.CreatedAt
	}
	require.NoError(t, f.db.Create(&token).Error)
	return &token
}

func (f *fixture) reload(t *testing.T, token string) *InviteToken {
	t.Helper()

	var row InviteToken
	require.NoError(t, f.db.Where("token = ?", token).First(&row).Error)
	return &row
}

func (f *fixture) auditActions() []string {
	var actions []string
	for _, call := range f.recorder.Calls {
		if call.Method == "Record" {
			actions = append(actions, call.Arguments.String(2))
		}
	}
	return actions
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// racingStore lets a test interleave a competing writer between the engine's reads and
// its guarded writes.
type racingStore struct {
	Store
	findByToken   func(ctx context.Context, token string, call int) (*InviteToken, error)
	deactivate    func(ctx context.Context, token string, now time.Time) (int64, error)
	replaceRaffle func(ctx context.Context, token *InviteToken) error

	mu        sync.Mutex
	findCalls int
}

func (s *racingStore) FindByToken(ctx context.Context, token string) (*InviteToken, error) {
	if s.findByToken == nil {
		return s.Store.FindByToken(ctx, token)
	}
	s.mu.Lock()
	s.findCalls++
	call := s.findCalls
	s.mu.Unlock()
	return s.findByToken(ctx, token, call)
}

func (s *racingStore) Deactivate(ctx context.Context, token string, now time.Time) (int64, error) {
	if s.deactivate == nil {
		return s.Store.Deactivate(ctx, token, now)
	}
	return s.deactivate(ctx, token, now)
}

func (s *racingStore) ReplaceRaffle(ctx context.Context, token *InviteToken) error {
	if s.replaceRaffle == nil {
		return s.Store.ReplaceRaffle(ctx, token)
	}
	return s.replaceRaffle(ctx, token)
}

// withStore rebuilds the fixture's service on top of store.
func (f *fixture) withStore(store Store) *Service {
	service := NewService(testutils.GetTestConfig(), store, nil)
	service.SetClock(f.clock.Now)
	service.SetRecorder(f.recorder)
	return service
}
