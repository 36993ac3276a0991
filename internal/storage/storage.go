// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/noottools/launch-engine/internal/storage/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence surface of the engine. The only multi-row
// atomic write required is CreatePoolWithEscrow: a Pool must never be
// observable without its EscrowRecord.
type Store interface {
	// Tokens
	CreateToken(ctx context.Context, token *models.Token) error
	GetToken(ctx context.Context, id string) (*models.Token, error)
	SetTokenMintAddress(ctx context.Context, id, mintAddress string) error
	SetTokenSupplyMinted(ctx context.Context, id string) error

	// Pools + escrow (atomic pair)
	CreatePoolWithEscrow(ctx context.Context, pool *models.Pool, escrow *models.EscrowRecord) error
	GetPool(ctx context.Context, id string) (*models.Pool, error)
	GetPoolByAddress(ctx context.Context, poolAddress string) (*models.Pool, error)
	GetEscrow(ctx context.Context, poolID string) (*models.EscrowRecord, error)
	UpdateEscrow(ctx context.Context, escrow *models.EscrowRecord) error
	ListLockedEscrows(ctx context.Context) ([]*models.EscrowRecord, error)

	// Burn log (append-only)
	AppendBurnEvent(ctx context.Context, event *models.BurnEvent) error
	ListBurnEvents(ctx context.Context, limit, offset int) ([]*models.BurnEvent, error)

	// Stats rollups. CountTokens counts finalized assets only; rows whose
	// launch never reached a mint address are excluded.
	CountTokens(ctx context.Context) (int64, error)
	SumBurned(ctx context.Context) (float64, error)
	SumVolumeUsd(ctx context.Context) (float64, error)
	SumHolders(ctx context.Context) (int64, error)

	RunMigrations() error
}
