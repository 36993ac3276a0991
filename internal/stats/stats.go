// internal/stats/stats.go
package stats

import (
	"context"
	"fmt"

	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/storage/models"
	"go.uber.org/zap"
)

// Summary is the engine-wide rollup.
type Summary struct {
	TokensLaunched    int64
	TotalBurnedTokens float64
	TotalVolumeUsd    float64
	TotalHolders      int64
}

// Aggregator computes rollups from persisted records. Figures reflect the
// last persisted state, not live chain state.
type Aggregator struct {
	store  storage.Store
	logger *zap.Logger
}

func NewAggregator(store storage.Store, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: logger.Named("stats"),
	}
}

// Summarize rolls up launch, burn, volume and holder figures.
func (a *Aggregator) Summarize(ctx context.Context) (*Summary, error) {
	tokens, err := a.store.CountTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("token count: %w", err)
	}
	burned, err := a.store.SumBurned(ctx)
	if err != nil {
		return nil, fmt.Errorf("burn rollup: %w", err)
	}
	volume, err := a.store.SumVolumeUsd(ctx)
	if err != nil {
		return nil, fmt.Errorf("volume rollup: %w", err)
	}
	holders, err := a.store.SumHolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("holder rollup: %w", err)
	}

	return &Summary{
		TokensLaunched:    tokens,
		TotalBurnedTokens: burned,
		TotalVolumeUsd:    volume,
		TotalHolders:      holders,
	}, nil
}

// RecentBurns pages through the burn event log, newest first.
func (a *Aggregator) RecentBurns(ctx context.Context, limit, offset int) ([]*models.BurnEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	events, err := a.store.ListBurnEvents(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("burn event listing: %w", err)
	}
	return events, nil
}
