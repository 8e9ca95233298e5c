// This file defines the persistence model used by the optional SQLite-backed
// idempotency store. The in-memory backend does not use it.
package domain

import "time"

// Idempotency is a recorded successful payment result keyed by the
// caller-supplied idempotency key. Rows are never updated: the first insert
// for a key wins and later duplicates are discarded, which is what makes
// replays stable.
type Idempotency struct {
	ID            string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key           string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_idempotency_key"`
	TransactionID string    `gorm:"type:TEXT NOT NULL"`
	Status        string    `gorm:"type:TEXT NOT NULL"`
	Message       string    `gorm:"type:TEXT NOT NULL"`
	CreatedAt     time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt     time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
