package invite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SweepExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	past := timePtr(f.clock.Now().Add(-time.Minute))
	future := timePtr(f.clock.Now().Add(time.Hour))

	stale := f.insert(t, InviteToken{MaxUses: 3, Active: true, ExpiresAt: past})
	fresh := f.insert(t, InviteToken{MaxUses: 3, Active: true, ExpiresAt: future})
	forever := f.insert(t, InviteToken{MaxUses: 3, Active: true})

	affected, err := f.service.SweepExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.False(t, f.reload(t, stale.Token).Active)
	assert.True(t, f.reload(t, fresh.Token).Active)
	assert.True(t, f.reload(t, forever.Token).Active)

	again, err := f.service.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestService_SeedMasterTokens(t *testing.T) {
	ctx := context.Background()
	const master = "6f1c2b3a-0000-4000-8000-00000000abcd"

	t.Run("seeds normalized and is idempotent", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.service.SeedMasterTokens(ctx, []string{master}))
		require.NoError(t, f.service.SeedMasterTokens(ctx, []string{master}))

		var count int64
		require.NoError(t, f.db.Model(&MasterToken{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		result, err := f.service.Validate(ctx, master)
		require.NoError(t, err)
		assert.True(t, result.Eligible)
		assert.True(t, result.IsMaster)
	})

	t.Run("rejects malformed entries", func(t *testing.T) {
		f := newFixture(t)

		err := f.service.SeedMasterTokens(ctx, []string{"short"})

		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("nothing to seed", func(t *testing.T) {
		f := newFixture(t)
		assert.NoError(t, f.service.SeedMasterTokens(ctx, nil))
	})
}

func TestScheduler(t *testing.T) {
	t.Run("sweeps and draws on its intervals", func(t *testing.T) {
		f := newFixture(t)
		f.service.config.SweepInterval = 10 * time.Millisecond
		f.service.config.RaffleScheduleInterval = 10 * time.Millisecond
		stale := f.insert(t, InviteToken{MaxUses: 1, Active: true, ExpiresAt: timePtr(f.clock.Now().Add(-time.Second))})

		scheduler := NewScheduler(f.service)
		scheduler.Start()
		defer scheduler.Stop()

		assert.Eventually(t, func() bool {
			var row InviteToken
			if err := f.db.Where("token = ?", stale.Token).First(&row).Error; err != nil {
				return false
			}
			var raffles int64
			f.db.Model(&InviteToken{}).Where("raffle = ?", true).Count(&raffles)
			return !row.Active && raffles == 1
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("zero intervals start nothing", func(t *testing.T) {
		f := newFixture(t)

		scheduler := NewScheduler(f.service)
		scheduler.Start()
		scheduler.Stop()

		var count int64
		require.NoError(t, f.db.Model(&InviteToken{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("stop without start", func(t *testing.T) {
		f := newFixture(t)
		assert.NotPanics(t, NewScheduler(f.service).Stop)
	})
}
