// internal/types/types.go
package types

// Venue identifies the AMM venue a pool is created on.
type Venue string

const (
	VenueRaydium Venue = "raydium"
	VenueOrca    Venue = "orca"
)

// QuoteAsset identifies the quote side of a launch pool.
type QuoteAsset string

const (
	QuoteSOL  QuoteAsset = "SOL"
	QuoteUSDC QuoteAsset = "USDC"
)

// BurnSource tags where funds routed through the burn pipeline came from.
type BurnSource string

const (
	// SourceLiquidityMigration is the fixed cut of migrated quote liquidity
	// taken at pool creation time.
	SourceLiquidityMigration BurnSource = "liquidity_migration"
	// SourceTradingFees is fee revenue accumulated from pool trading.
	SourceTradingFees BurnSource = "trading_fees"
)

// ValidVenue reports whether v is a supported venue.
func ValidVenue(v Venue) bool {
	return v == VenueRaydium || v == VenueOrca
}

// ValidQuoteAsset reports whether q is a supported quote asset.
func ValidQuoteAsset(q QuoteAsset) bool {
	return q == QuoteSOL || q == QuoteUSDC
}

// ValidBurnSource reports whether s is a known burn funding source.
func ValidBurnSource(s BurnSource) bool {
	return s == SourceLiquidityMigration || s == SourceTradingFees
}
