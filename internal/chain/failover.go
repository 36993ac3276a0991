// internal/chain/failover.go
package chain

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/types"
	"go.uber.org/zap"
)

// Failover distributes calls across several chain clients round-robin and
// rotates away from an endpoint when it fails. Submissions only fail over on
// send-stage errors: once a transaction may have been broadcast, retrying it
// through another endpoint risks a duplicate, so ambiguity is surfaced to
// the caller instead.
type Failover struct {
	clients []Client
	logger  *zap.Logger

	mu    sync.Mutex
	index int
}

var _ Client = (*Failover)(nil)

func NewFailover(clients []Client, logger *zap.Logger) *Failover {
	return &Failover{
		clients: clients,
		logger:  logger.Named("chain-failover"),
	}
}

func (f *Failover) next() Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	client := f.clients[f.index]
	f.index = (f.index + 1) % len(f.clients)
	return client
}

func (f *Failover) SubmitAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var lastErr error
	for range f.clients {
		signature, err := f.next().SubmitAndConfirm(ctx, tx)
		if err == nil {
			return signature, nil
		}
		var sendErr *types.ChainSubmissionError
		if !errors.As(err, &sendErr) {
			// Broadcast already happened (or its fate is unknown); never
			// re-submit through another endpoint.
			return signature, err
		}
		f.logger.Warn("endpoint rejected submission, failing over", zap.Error(err))
		lastErr = err
	}
	return solana.Signature{}, lastErr
}

func (f *Failover) GetAccount(ctx context.Context, address solana.PublicKey) (*AccountInfo, error) {
	var info *AccountInfo
	err := f.eachUntil(func(c Client) error {
		var err error
		info, err = c.GetAccount(ctx, address)
		return err
	})
	return info, err
}

func (f *Failover) GetTransaction(ctx context.Context, signature solana.Signature) (*TxInfo, error) {
	var info *TxInfo
	err := f.eachUntil(func(c Client) error {
		var err error
		info, err = c.GetTransaction(ctx, signature)
		return err
	})
	return info, err
}

func (f *Failover) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var hash solana.Hash
	err := f.eachUntil(func(c Client) error {
		var err error
		hash, err = c.LatestBlockhash(ctx)
		return err
	})
	return hash, err
}

func (f *Failover) MinimumBalanceForRentExemption(ctx context.Context, space uint64) (uint64, error) {
	var lamports uint64
	err := f.eachUntil(func(c Client) error {
		var err error
		lamports, err = c.MinimumBalanceForRentExemption(ctx, space)
		return err
	})
	return lamports, err
}

// eachUntil tries the read against every endpoint once, keeping the first
// success.
func (f *Failover) eachUntil(fn func(Client) error) error {
	var lastErr error
	for range f.clients {
		if err := fn(f.next()); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
