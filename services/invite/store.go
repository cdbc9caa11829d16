package invite

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the row access the lifecycle engine needs. Every mutation that depends on a
// token's current state is expressed as a guarded write so it cannot act on stale reads.
type Store interface {
	FindByToken(ctx context.Context, token string) (*InviteToken, error)
	FindMaster(ctx context.Context, token string) (*MasterToken, error)
	Insert(ctx context.Context, token *InviteToken) error
	InsertMaster(ctx context.Context, token *MasterToken) error

	// ConditionalIncrement records one use iff the token is still eligible at now and
	// returns the number of rows affected.
	ConditionalIncrement(ctx context.Context, token string, now time.Time) (int64, error)
	// Deactivate flips active off iff the token is still eligible at now.
	Deactivate(ctx context.Context, token string, now time.Time) (int64, error)

	CurrentRaffle(ctx context.Context) (*InviteToken, error)
	// ReplaceRaffle deletes every raffle-flagged row and inserts token in one transaction.
	ReplaceRaffle(ctx context.Context, token *InviteToken) error

	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]InviteToken, int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByToken(ctx context.Context, token string) (*InviteToken, error) {
	var row InviteToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) FindMaster(ctx context.Context, token string) (*MasterToken, error) {
	var row MasterToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) Insert(ctx context.Context, token *InviteToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormStore) InsertMaster(ctx context.Context, token *MasterToken) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(token).Error
}

func (s *GormStore) ConditionalIncrement(ctx context.Context, token string, now time.Time) (int64, error) {
	// Map keys are assigned in sorted order, so active is computed from the
	// pre-increment uses even on MySQL, which evaluates SET left to right.
	result := s.db.WithContext(ctx).
		Model(&InviteToken{}).
		Where("token = ? AND active = ? AND uses < max_uses AND (expires_at IS NULL OR expires_at > ?)", token, true, now).
		Updates(map[string]any{
			"active":     gorm.Expr("uses + 1 < max_uses"),
			"uses":       gorm.Expr("uses + 1"),
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (s *GormStore) Deactivate(ctx context.Context, token string, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&InviteToken{}).
		Where("token = ? AND active = ? AND uses < max_uses AND (expires_at IS NULL OR expires_at > ?)", token, true, now).
		Updates(map[string]any{
			"active":     false,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (s *GormStore) CurrentRaffle(ctx context.Context) (*InviteToken, error) {
	var row InviteToken
	err := s.db.WithContext(ctx).
		Where("raffle = ?", true).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) ReplaceRaffle(ctx context.Context, token *InviteToken) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("raffle = ?", true).Delete(&InviteToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrRaffleConflict
	}
	return err
}

func (s *GormStore) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&InviteToken{}).
		Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Updates(map[string]any{
			"active":     false,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]InviteToken, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Active != nil {
			db = db.Where("active = ?", *filter.Active)
		}
		if filter.Raffle != nil {
			db = db.Where("raffle = ?", *filter.Raffle)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&InviteToken{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []InviteToken
	err := s.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Migrate adds the single-raffle partial unique index on dialects that support it.
// MySQL has no partial indexes and relies on ReplaceRaffle's transaction alone.
func Migrate(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		return db.Exec(
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_invite_tokens_single_raffle ON invite_tokens (raffle) WHERE raffle = true",
		).Error
	default:
		return nil
	}
}

// Models lists the tables owned by this package, for AutoMigrate.
func Models() []any {
	return []any{&InviteToken{}, &MasterToken{}}
}
