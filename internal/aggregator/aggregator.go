// internal/aggregator/aggregator.go
package aggregator

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrNoRoute means the aggregator found no path between the two assets.
var ErrNoRoute = errors.New("no swap route available")

// QuoteRequest asks for the best route from one mint to another.
type QuoteRequest struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	// AmountIn is in base units of the input mint.
	AmountIn uint64
	// SlippageBps caps the accepted price movement.
	SlippageBps int
}

// Route is a priced swap path returned by the aggregator.
type Route struct {
	InputMint    solana.PublicKey
	OutputMint   solana.PublicKey
	AmountIn     uint64
	AmountOut    uint64
	MinAmountOut uint64
	PriceImpact  float64
	// raw is the aggregator's opaque route payload, echoed back on execute.
	raw []byte
}

// Aggregator prices and executes swaps through an external routing service.
type Aggregator interface {
	Quote(ctx context.Context, req QuoteRequest) (*Route, error)
	// BuildSwapTransaction turns a quoted route into an unsigned transaction
	// paid for and signed by owner.
	BuildSwapTransaction(ctx context.Context, route *Route, owner solana.PublicKey) (*solana.Transaction, error)
}
