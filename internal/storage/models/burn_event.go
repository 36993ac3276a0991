// internal/storage/models/burn_event.go
package models

import "time"

// BurnEvent is an append-only record of one executed swap-and-burn.
// Rows are never mutated or deleted.
type BurnEvent struct {
	ID          string  `gorm:"primarykey;type:varchar(36)"`
	Amount      float64 `gorm:"type:decimal(30,9);not null"`
	ValueUsd    float64 `gorm:"type:decimal(18,2);not null"`
	SourceType  string  `gorm:"not null;type:varchar(30)"`
	TxSignature string  `gorm:"type:varchar(88)"`
	CreatedAt   time.Time
}
