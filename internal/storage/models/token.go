// internal/storage/models/token.go
package models

import "time"

// Token is the root launch entity. MintAddress is empty until the mint
// confirms, then permanently set; a row is never reused across mints.
type Token struct {
	ID           string `gorm:"primarykey;type:varchar(36)"`
	Name         string `gorm:"not null;type:varchar(100)"`
	Symbol       string `gorm:"not null;type:varchar(20)"`
	Decimals     uint8  `gorm:"not null"`
	TotalSupply  string `gorm:"not null;type:varchar(40)"`
	MintAddress  string `gorm:"index;type:varchar(44)"`
	SupplyMinted bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
}
