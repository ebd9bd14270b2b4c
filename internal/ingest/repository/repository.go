// Package repository provides descriptor-driven table access for market
// record ingestion. Rows are written as column maps so one store serves
// every registered variant.
package repository

import (
	"context"
	"errors"

	recdomain "github.com/cenergia/mercado/internal/records/domain"
	"gorm.io/gorm"
)

// Store persists coerced records.
type Store struct {
	db *gorm.DB
}

// New builds a Store on top of db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for transaction scoping.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// InsertRows writes rows into table within tx.
func (s *Store) InsertRows(ctx context.Context, tx *gorm.DB, table string, rows []recdomain.Values) error {
	if len(rows) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(rows))
	for i, r := range rows {
		payload[i] = map[string]any(r)
	}
	return tx.WithContext(ctx).Table(table).Create(payload).Error
}

// FindByKey loads the row identified by key. The raw column map is
// returned as the driver produced it; callers normalize through
// NormalizeStored before comparing.
func (s *Store) FindByKey(ctx context.Context, table string, key recdomain.Values) (map[string]any, bool, error) {
	row := map[string]any{}
	err := s.db.WithContext(ctx).Table(table).Where(map[string]any(key)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// UpdateByKey updates the given columns of the row identified by key.
// When touchColumn is set it is bumped to the database clock.
func (s *Store) UpdateByKey(ctx context.Context, tx *gorm.DB, table string, key, updates recdomain.Values, touchColumn string) error {
	changes := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		changes[k] = v
	}
	if touchColumn != "" {
		changes[touchColumn] = gorm.Expr("CURRENT_TIMESTAMP")
	}
	return tx.WithContext(ctx).Table(table).Where(map[string]any(key)).Updates(changes).Error
}

// ExistsBy reports whether any row of table has column = value.
func (s *Store) ExistsBy(ctx context.Context, table, column string, value any) (bool, error) {
	var one int
	err := s.db.WithContext(ctx).
		Table(table).
		Select("1").
		Where(map[string]any{column: value}).
		Limit(1).
		Take(&one).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
