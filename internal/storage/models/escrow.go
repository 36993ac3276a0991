// internal/storage/models/escrow.go
package models

import "time"

// EscrowRecord tracks the locked LP share of a pool, one-to-one with Pool
// and created in the same transaction. LockedLpAmount never changes after
// creation; IsUnlocked flips false -> true exactly once.
type EscrowRecord struct {
	PoolID         string  `gorm:"primarykey;type:varchar(36)"`
	LockedLpAmount float64 `gorm:"type:decimal(30,9);not null"`
	LockedValueUsd float64 `gorm:"type:decimal(18,6);not null"`
	WithdrawnLp    float64 `gorm:"type:decimal(30,9);not null;default:0"`
	HoldersCount   int64   `gorm:"not null;default:0"`
	VolumeUsd      float64 `gorm:"type:decimal(18,2);not null;default:0"`
	IsUnlocked     bool    `gorm:"not null;default:false"`
	UpdatedAt      time.Time
}
