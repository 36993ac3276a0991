// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/burn"
	"github.com/noottools/launch-engine/internal/escrow"
	"github.com/noottools/launch-engine/internal/guard"
	"github.com/noottools/launch-engine/internal/minter"
	"github.com/noottools/launch-engine/internal/oracle"
	"github.com/noottools/launch-engine/internal/pool"
	"github.com/noottools/launch-engine/internal/stats"
	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/types"
	"go.uber.org/zap"
)

// Engine is the façade over the launch pipeline: mint, pool + escrow,
// condition-gated unlock and swap-and-burn.
type Engine struct {
	minter *minter.Minter
	pools  *pool.Builder
	ledger *escrow.Ledger
	burns  *burn.Router
	stats  *stats.Aggregator
	oracle oracle.Oracle
	store  storage.Store
	logger *zap.Logger

	mu     sync.RWMutex
	guards map[string]*guard.Guard
}

func New(
	m *minter.Minter,
	pools *pool.Builder,
	ledger *escrow.Ledger,
	burns *burn.Router,
	statsAgg *stats.Aggregator,
	marketOracle oracle.Oracle,
	store storage.Store,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		minter: m,
		pools:  pools,
		ledger: ledger,
		burns:  burns,
		stats:  statsAgg,
		oracle: marketOracle,
		store:  store,
		logger: logger.Named("engine"),
		guards: make(map[string]*guard.Guard),
	}
}

// MintToken creates a new asset and mints its initial supply. When the
// transfer restriction is enabled a local guard mirror of the on-chain hook
// is registered for the mint.
func (e *Engine) MintToken(ctx context.Context, params minter.MintParams) (*minter.MintResult, error) {
	result, err := e.minter.Mint(ctx, params)
	if result != nil && params.EnableTransferRestriction {
		e.mu.Lock()
		e.guards[result.TokenID] = guard.New(result.MintAddress, time.Now().UTC())
		e.mu.Unlock()
	}
	return result, err
}

// RetryInitialSupply finishes a mint whose supply step failed.
func (e *Engine) RetryInitialSupply(ctx context.Context, tokenID string) (*minter.MintResult, error) {
	return e.minter.RetryInitialSupply(ctx, tokenID)
}

// CreatePool builds a liquidity pool and locks the escrowed LP share.
func (e *Engine) CreatePool(ctx context.Context, params pool.CreateParams) (*pool.CreateResult, error) {
	return e.pools.Create(ctx, params)
}

// GetEscrowStatus reads escrow state by on-chain pool address.
func (e *Engine) GetEscrowStatus(ctx context.Context, poolAddress string) (*escrow.Status, error) {
	p, err := e.store.GetPoolByAddress(ctx, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("pool lookup for %s: %w", poolAddress, err)
	}
	return e.ledger.GetStatus(ctx, p.ID)
}

// ObservePool applies an externally sourced market observation to a pool's
// escrow by on-chain address.
func (e *Engine) ObservePool(ctx context.Context, poolAddress string, obs escrow.Observation) (*escrow.Status, error) {
	p, err := e.store.GetPoolByAddress(ctx, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("pool lookup for %s: %w", poolAddress, err)
	}
	return e.ledger.Observe(ctx, p.ID, obs)
}

// WithdrawEscrow releases unlocked LP shares by on-chain pool address.
func (e *Engine) WithdrawEscrow(ctx context.Context, poolAddress string, amount float64) (*escrow.Status, error) {
	p, err := e.store.GetPoolByAddress(ctx, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("pool lookup for %s: %w", poolAddress, err)
	}
	return e.ledger.Withdraw(ctx, p.ID, amount)
}

// SweepEscrows reads the oracle for every still-locked escrow and applies the
// observation. Per-pool failures are logged and skipped; stale readings are
// expected when sources lag and are not an error of the sweep.
func (e *Engine) SweepEscrows(ctx context.Context) error {
	poolIDs, err := e.ledger.ListLocked(ctx)
	if err != nil {
		return err
	}
	for _, poolID := range poolIDs {
		p, err := e.store.GetPool(ctx, poolID)
		if err != nil {
			e.logger.Warn("escrow sweep: pool lookup failed",
				zap.String("pool_id", poolID), zap.Error(err))
			continue
		}
		reading, err := e.oracle.Read(ctx, p.PoolAddress)
		if err != nil {
			e.logger.Warn("escrow sweep: oracle read failed",
				zap.String("pool_address", p.PoolAddress), zap.Error(err))
			continue
		}
		_, err = e.ledger.Observe(ctx, poolID, escrow.Observation{
			HoldersCount: reading.HoldersCount,
			VolumeUsd:    reading.VolumeUsd,
			ObservedAt:   time.Now().UTC(),
		})
		var stale *types.StaleObservationError
		if errors.As(err, &stale) {
			e.logger.Debug("escrow sweep: stale reading skipped",
				zap.String("pool_id", poolID))
			continue
		}
		if err != nil {
			e.logger.Warn("escrow sweep: observation failed",
				zap.String("pool_id", poolID), zap.Error(err))
		}
	}
	return nil
}

// AccrueFees adds quote-currency funds to a burn bucket.
func (e *Engine) AccrueFees(source types.BurnSource, amount float64) {
	e.burns.Accrue(source, amount)
}

// BurnBalance reports the undisbursed balance of a burn bucket.
func (e *Engine) BurnBalance(source types.BurnSource) float64 {
	return e.burns.Balance(source)
}

// ExecuteBurn runs one swap-and-burn from a source bucket.
func (e *Engine) ExecuteBurn(ctx context.Context, params burn.ExecuteParams) (*burn.ExecuteResult, error) {
	return e.burns.ExecuteBurn(ctx, params)
}

// RecordBurnEvent logs a burn executed outside the engine's own pipeline.
func (e *Engine) RecordBurnEvent(ctx context.Context, amount, valueUsd float64, source types.BurnSource, txSignature string) (string, error) {
	return e.burns.RecordExternal(ctx, amount, valueUsd, source, txSignature)
}

// SweepTradingFees burns the accumulated trading-fee bucket once it crosses
// the threshold. A balance below the threshold is a no-op.
func (e *Engine) SweepTradingFees(ctx context.Context, tokenID string, threshold float64) error {
	if tokenID == "" {
		return nil
	}
	balance := e.burns.Balance(types.SourceTradingFees)
	if balance < threshold {
		return nil
	}
	_, err := e.burns.ExecuteBurn(ctx, burn.ExecuteParams{
		TokenID: tokenID,
		Source:  types.SourceTradingFees,
		Amount:  balance,
	})
	return err
}

// GetStats rolls up engine-wide launch, burn, volume and holder figures.
func (e *Engine) GetStats(ctx context.Context) (*stats.Summary, error) {
	return e.stats.Summarize(ctx)
}

// RecentBurns pages the burn event log.
func (e *Engine) RecentBurns(ctx context.Context, limit, offset int) ([]*burn.EventView, error) {
	events, err := e.stats.RecentBurns(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]*burn.EventView, 0, len(events))
	for _, ev := range events {
		views = append(views, &burn.EventView{
			ID:          ev.ID,
			Amount:      ev.Amount,
			ValueUsd:    ev.ValueUsd,
			SourceType:  types.BurnSource(ev.SourceType),
			TxSignature: ev.TxSignature,
			CreatedAt:   ev.CreatedAt,
		})
	}
	return views, nil
}

// EvaluateTransfer mirrors the on-chain hook decision for a transfer of the
// token executed at time t, given the owning programs of both token accounts.
func (e *Engine) EvaluateTransfer(tokenID string, t time.Time, sourceOwner, destOwner solana.PublicKey) error {
	e.mu.RLock()
	g, ok := e.guards[tokenID]
	e.mu.RUnlock()
	if !ok {
		// No restriction was attached at mint time.
		return nil
	}
	return g.Evaluate(t, guard.ClassOf(sourceOwner), guard.ClassOf(destOwner))
}

// DisableGuard switches off the transfer restriction for a token before its
// natural expiry. One-way.
func (e *Engine) DisableGuard(tokenID string) error {
	e.mu.RLock()
	g, ok := e.guards[tokenID]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no transfer guard registered for token %s", tokenID)
	}
	g.Disable()
	e.logger.Warn("transfer guard disabled", zap.String("token_id", tokenID))
	return nil
}
