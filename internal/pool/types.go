// internal/pool/types.go
package pool

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/types"
)

// LockFraction is the portion of issued LP shares withheld in escrow.
const LockFraction = 0.60

// MigrationFeeFraction is the cut of migrated quote liquidity queued for the
// burn pipeline at pool creation.
const MigrationFeeFraction = 0.05

// Deposit describes the liquidity submitted to a venue. Amounts are in whole
// tokens; each side carries its mint's decimals so instruction builders can
// scale to base units.
type Deposit struct {
	TokenMint     solana.PublicKey
	QuoteMint     solana.PublicKey
	TokenAmount   float64
	QuoteAmount   float64
	TokenDecimals uint8
	QuoteDecimals uint8
}

// VenuePool is the on-chain result of a venue pool creation.
type VenuePool struct {
	PoolAddress solana.PublicKey
	LPMint      solana.PublicKey
	EscrowVault solana.PublicKey
	Signature   solana.Signature
}

// Venue creates a liquidity pool on one AMM.
type Venue interface {
	Name() types.Venue
	CreatePool(ctx context.Context, deposit Deposit) (*VenuePool, error)
}

// FeeAccruer receives the migration cut for the burn pipeline.
type FeeAccruer interface {
	Accrue(source types.BurnSource, amount float64)
}

// CreateParams describe the pool to build.
type CreateParams struct {
	TokenID     string
	QuoteAsset  types.QuoteAsset
	TokenAmount float64
	QuoteAmount float64
	AMM         types.Venue
	// QuoteUsdPrice is the USD price of one quote unit at lock time, used
	// only for the locked-value snapshot. Defaults to 1 (stable quote).
	QuoteUsdPrice float64
}

// CreateResult is the outcome of a confirmed pool creation.
type CreateResult struct {
	PoolID         string
	PoolAddress    solana.PublicKey
	LPSharesIssued float64
	LockedLpAmount float64
	EscrowAddress  solana.PublicKey
}
