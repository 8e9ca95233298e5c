// This file provides the optional GORM/SQLite idempotency store backend. It
// survives process restarts, which tightens the retention story compared to
// the in-memory default, but it is still a single-node store: multi-node
// coordination is out of scope.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-payment-gateway/internal/domain"
)

// SQLStore persists idempotency records via GORM. First-write-wins semantics
// come from the unique index on the key column: a duplicate insert is
// detected and discarded so the originally stored result keeps being served.
type SQLStore struct {
	db  *gorm.DB
	ttl time.Duration

	now func() time.Time // test seam
}

// NewSQLStore returns a store over db retaining records for ttl.
func NewSQLStore(db *gorm.DB, ttl time.Duration) *SQLStore {
	return &SQLStore{db: db, ttl: ttl, now: time.Now}
}

// Get returns the non-expired result stored under key, or (nil, nil) when no
// live record exists.
func (s *SQLStore) Get(ctx context.Context, key string) (*domain.PaymentResult, error) {
	var rec domain.Idempotency
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.now().UTC()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.PaymentResult{
		TransactionID: rec.TransactionID,
		Status:        domain.PaymentStatus(rec.Status),
		Message:       rec.Message,
	}, nil
}

// Put inserts a record for key. A unique violation means another request
// already stored a result for this key; that first write is retained and the
// duplicate is dropped silently.
func (s *SQLStore) Put(ctx context.Context, key string, result *domain.PaymentResult) error {
	now := s.now().UTC()
	rec := &domain.Idempotency{
		ID:            uuid.NewString(),
		Key:           key,
		TransactionID: result.TransactionID,
		Status:        string(result.Status),
		Message:       result.Message,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil
		}
		return err
	}
	return nil
}

// DeleteExpired removes records whose retention window has passed and reports
// how many were dropped. Intended for a periodic maintenance call; Get already
// ignores expired rows.
func (s *SQLStore) DeleteExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now().UTC()).
		Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
