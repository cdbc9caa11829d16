package invite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Draw(t *testing.T) {
	ctx := context.Background()

	t.Run("first draw mints a single-use raffle token", func(t *testing.T) {
		f := newFixture(t)

		value, err := f.service.Draw(ctx)

		require.NoError(t, err)
		require.Len(t, value, TokenLength)
		assert.Equal(t, strings.ToUpper(value), value)

		row := f.reload(t, value)
		assert.True(t, row.Raffle)
		assert.True(t, row.Active)
		assert.Equal(t, 1, row.MaxUses)
		assert.Equal(t, 0, row.Uses)
		assert.Nil(t, row.CreatedBy)
		require.NotNil(t, row.ExpiresAt)
		assert.True(t, row.ExpiresAt.Equal(f.clock.Now().Add(24*time.Hour)))
		assert.Equal(t, []string{ActionRaffleDrawn}, f.auditActions())
	})

	t.Run("draws within the period are idempotent while unconsumed", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.service.Draw(ctx)
		require.NoError(t, err)
		f.clock.Advance(23 * time.Hour)
		second, err := f.service.Draw(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, []string{ActionRaffleDrawn}, f.auditActions())
	})

	t.Run("consumed raffle token yields empty draws until the period ends", func(t *testing.T) {
		f := newFixture(t)

		tokenA, err := f.service.Draw(ctx)
		require.NoError(t, err)
		assert.Equal(t, tokenA, f.reload(t, tokenA).Token)

		consumed, err := f.service.Consume(ctx, nil, tokenA)
		require.NoError(t, err)
		require.True(t, consumed)

		f.clock.Advance(time.Hour)
		empty, err := f.service.Draw(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		f.clock.Advance(24 * time.Hour)
		tokenB, err := f.service.Draw(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, tokenB)
		assert.NotEqual(t, tokenA, tokenB)
	})

	t.Run("rotation replaces the previous raffle row", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.service.Draw(ctx)
		require.NoError(t, err)
		f.clock.Advance(24 * time.Hour)
		second, err := f.service.Draw(ctx)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		var raffleRows int64
		require.NoError(t, f.db.Model(&InviteToken{}).Where("raffle = ?", true).Count(&raffleRows).Error)
		assert.Equal(t, int64(1), raffleRows)
		var total int64
		require.NoError(t, f.db.Model(&InviteToken{}).Count(&total).Error)
		assert.Equal(t, int64(1), total)
	})

	t.Run("standard tokens survive rotation", func(t *testing.T) {
		f := newFixture(t)
		standard := f.insert(t, InviteToken{MaxUses: 5, Active: true})

		_, err := f.service.Draw(ctx)
		require.NoError(t, err)
		f.clock.Advance(25 * time.Hour)
		_, err = f.service.Draw(ctx)
		require.NoError(t, err)

		assert.Equal(t, standard.Token, f.reload(t, standard.Token).Token)
	})

	t.Run("disabled raffle token is not handed out", func(t *testing.T) {
		f := newFixture(t)
		value, err := f.service.Draw(ctx)
		require.NoError(t, err)
		_, err = f.service.Disable(ctx, nil, value)
		require.NoError(t, err)

		again, err := f.service.Draw(ctx)

		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("partial unique index rejects a second raffle row", func(t *testing.T) {
		f := newFixture(t)
		f.insert(t, InviteToken{Raffle: true, Active: true})

		err := f.db.Create(&InviteToken{
			Token:     "6F1C2B3A-0000-4000-8000-00000000CCCC",
			MaxUses:   1,
			Active:    true,
			Raffle:    true,
			CreatedAt: f.clock.Now(),
		}).Error

		assert.Error(t, err)
	})

	t.Run("losing a concurrent rotation returns the winner's token", func(t *testing.T) {
		f := newFixture(t)
		const winner = "6F1C2B3A-0000-4000-8000-00000000DDDD"
		store := &racingStore{
			Store: NewGormStore(f.db),
			replaceRaffle: func(context.Context, *InviteToken) error {
				f.insert(t, InviteToken{Token: winner, Raffle: true, Active: true})
				return ErrRaffleConflict
			},
		}

		value, err := f.withStore(store).Draw(ctx)

		require.NoError(t, err)
		assert.Equal(t, winner, value)
		assert.Empty(t, f.auditActions())
	})

	t.Run("losing a concurrent rotation to a consumed winner returns nothing", func(t *testing.T) {
		f := newFixture(t)
		const winner = "6F1C2B3A-0000-4000-8000-00000000EEEE"
		store := &racingStore{
			Store: NewGormStore(f.db),
			replaceRaffle: func(context.Context, *InviteToken) error {
				f.insert(t, InviteToken{Token: winner, Raffle: true, Active: true, Uses: 1})
				return ErrRaffleConflict
			},
		}

		value, err := f.withStore(store).Draw(ctx)

		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("storage failure yields an error and no token", func(t *testing.T) {
		f := newFixture(t)
		sqlDB, err := f.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		value, err := f.service.Draw(ctx)

		assert.Empty(t, value)
		assert.ErrorIs(t, err, ErrStorage)
	})
}
