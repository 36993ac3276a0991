// internal/storage/models/pool.go
package models

import "time"

// Pool pairs a launched token against a quote asset on an AMM venue.
// PoolAddress is immutable once set.
type Pool struct {
	ID             string  `gorm:"primarykey;type:varchar(36)"`
	TokenID        string  `gorm:"index;not null;type:varchar(36)"`
	AMM            string  `gorm:"not null;type:varchar(20)"`
	QuoteAsset     string  `gorm:"not null;type:varchar(10)"`
	TokenAmount    float64 `gorm:"type:decimal(30,9);not null"`
	QuoteAmount    float64 `gorm:"type:decimal(30,9);not null"`
	LPSharesIssued float64 `gorm:"type:decimal(30,9);not null"`
	PoolAddress    string  `gorm:"uniqueIndex;not null;type:varchar(44)"`
	LPMint         string  `gorm:"type:varchar(44)"`
	EscrowAddress  string  `gorm:"type:varchar(44)"`
	CreatedAt      time.Time
}
