// internal/oracle/multi.go
package oracle

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MultiOracle queries several sources concurrently and keeps the highest
// figure per counter. Sources lag each other; taking the maximum keeps the
// combined reading monotonic as long as at least one source is fresh.
type MultiOracle struct {
	sources []Oracle
	logger  *zap.Logger
}

var _ Oracle = (*MultiOracle)(nil)

func NewMultiOracle(sources []Oracle, logger *zap.Logger) *MultiOracle {
	return &MultiOracle{
		sources: sources,
		logger:  logger.Named("multi-oracle"),
	}
}

// Read fans out to every source. Individual source failures are tolerated;
// only all sources failing is an error.
func (m *MultiOracle) Read(ctx context.Context, poolAddress string) (*Reading, error) {
	if len(m.sources) == 0 {
		return nil, ErrNoSources
	}

	var mu sync.Mutex
	var best *Reading
	var lastErr error

	g, ctx := errgroup.WithContext(ctx)
	for _, source := range m.sources {
		source := source
		g.Go(func() error {
			reading, err := source.Read(ctx, poolAddress)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				m.logger.Warn("oracle source failed",
					zap.String("pool", poolAddress), zap.Error(err))
				return nil
			}
			if best == nil {
				best = &Reading{}
			}
			if reading.HoldersCount > best.HoldersCount {
				best.HoldersCount = reading.HoldersCount
			}
			if reading.VolumeUsd > best.VolumeUsd {
				best.VolumeUsd = reading.VolumeUsd
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if best == nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ErrNoSources
	}
	return best, nil
}
