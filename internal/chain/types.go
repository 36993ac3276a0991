// internal/chain/types.go
package chain

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
)

// AccountInfo is the subset of on-chain account state the engine reads.
type AccountInfo struct {
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
}

// TxInfo describes a confirmed transaction looked up by signature.
type TxInfo struct {
	Signature solana.Signature
	Slot      uint64
	BlockTime time.Time
	Err       interface{}
}

// Client is the narrow chain interface the engine submits through. All
// methods have bounded waits; ambiguity (broadcast but unconfirmed) is
// surfaced as *types.AmbiguousConfirmationError, never as silent success.
type Client interface {
	SubmitAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetAccount(ctx context.Context, address solana.PublicKey) (*AccountInfo, error)
	GetTransaction(ctx context.Context, signature solana.Signature) (*TxInfo, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	MinimumBalanceForRentExemption(ctx context.Context, space uint64) (uint64, error)
}
