// internal/escrow/ledger_test.go
package escrow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/noottools/launch-engine/internal/storage/memory"
	"github.com/noottools/launch-engine/internal/storage/models"
	"github.com/noottools/launch-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestLedger(t *testing.T) (*Ledger, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewLedger(store, zaptest.NewLogger(t)), store
}

func seedEscrow(t *testing.T, store *memory.Store, poolID string, lockedLp float64) {
	t.Helper()
	err := store.CreatePoolWithEscrow(context.Background(),
		&models.Pool{
			ID:          poolID,
			TokenID:     "token-" + poolID,
			AMM:         string(types.VenueRaydium),
			QuoteAsset:  string(types.QuoteSOL),
			PoolAddress: "addr-" + poolID,
			CreatedAt:   time.Now().UTC(),
		},
		&models.EscrowRecord{
			PoolID:         poolID,
			LockedLpAmount: lockedLp,
			LockedValueUsd: lockedLp * 2,
			UpdatedAt:      time.Now().UTC(),
		})
	require.NoError(t, err)
}

func TestObserveUpdatesCounters(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)

	status, err := ledger.Observe(context.Background(), "p1", Observation{
		HoldersCount: 42,
		VolumeUsd:    1000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), status.HoldersCount)
	assert.Equal(t, 1000.0, status.VolumeUsd)
	assert.False(t, status.IsUnlocked)
}

func TestObserveRejectsStaleReading(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)
	ctx := context.Background()

	_, err := ledger.Observe(ctx, "p1", Observation{HoldersCount: 100, VolumeUsd: 5000})
	require.NoError(t, err)

	_, err = ledger.Observe(ctx, "p1", Observation{HoldersCount: 90, VolumeUsd: 6000})
	var stale *types.StaleObservationError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "holders_count", stale.Counter)

	_, err = ledger.Observe(ctx, "p1", Observation{HoldersCount: 110, VolumeUsd: 4000})
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "volume_usd", stale.Counter)

	// Stored values are untouched by rejected readings.
	status, err := ledger.GetStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), status.HoldersCount)
	assert.Equal(t, 5000.0, status.VolumeUsd)
}

func TestObserveEqualReadingIsAccepted(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)
	ctx := context.Background()

	_, err := ledger.Observe(ctx, "p1", Observation{HoldersCount: 100, VolumeUsd: 5000})
	require.NoError(t, err)
	_, err = ledger.Observe(ctx, "p1", Observation{HoldersCount: 100, VolumeUsd: 5000})
	require.NoError(t, err)
}

func TestUnlockRequiresBothThresholds(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)
	ctx := context.Background()

	status, err := ledger.Observe(ctx, "p1", Observation{HoldersCount: MinHolders, VolumeUsd: MinVolumeUsd - 0.01})
	require.NoError(t, err)
	assert.False(t, status.IsUnlocked)

	status, err = ledger.Observe(ctx, "p1", Observation{HoldersCount: MinHolders, VolumeUsd: MinVolumeUsd})
	require.NoError(t, err)
	assert.True(t, status.IsUnlocked, "exact thresholds must unlock")
}

func TestUnlockIsOneWay(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)
	ctx := context.Background()

	_, err := ledger.Observe(ctx, "p1", Observation{HoldersCount: 1000, VolumeUsd: 50000})
	require.NoError(t, err)

	// Further growth keeps the escrow unlocked and the counters moving.
	status, err := ledger.Observe(ctx, "p1", Observation{HoldersCount: 1500, VolumeUsd: 80000})
	require.NoError(t, err)
	assert.True(t, status.IsUnlocked)
	assert.Equal(t, int64(1500), status.HoldersCount)
}

func TestWithdrawBeforeUnlock(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)

	_, err := ledger.Withdraw(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, types.ErrEscrowStillLocked)
}

func TestWithdrawAfterUnlock(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)
	ctx := context.Background()

	_, err := ledger.Observe(ctx, "p1", Observation{HoldersCount: 1000, VolumeUsd: 50000})
	require.NoError(t, err)

	status, err := ledger.Withdraw(ctx, "p1", 250)
	require.NoError(t, err)
	assert.Equal(t, 250.0, status.WithdrawnLp)

	status, err = ledger.Withdraw(ctx, "p1", 350)
	require.NoError(t, err)
	assert.Equal(t, 600.0, status.WithdrawnLp)

	_, err = ledger.Withdraw(ctx, "p1", 1)
	var verr *types.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestObserveNegativeValues(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)

	var verr *types.ValidationError
	_, err := ledger.Observe(context.Background(), "p1", Observation{HoldersCount: -1})
	assert.ErrorAs(t, err, &verr)
	_, err = ledger.Observe(context.Background(), "p1", Observation{VolumeUsd: -1})
	assert.ErrorAs(t, err, &verr)
}

func TestObserveUnknownPool(t *testing.T) {
	ledger, _ := newTestLedger(t)
	_, err := ledger.Observe(context.Background(), "missing", Observation{})
	assert.Error(t, err)
}

func TestListLocked(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)
	seedEscrow(t, store, "p2", 600)
	ctx := context.Background()

	_, err := ledger.Observe(ctx, "p2", Observation{HoldersCount: 1000, VolumeUsd: 50000})
	require.NoError(t, err)

	locked, err := ledger.ListLocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, locked)
}

func TestConcurrentObservations(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedEscrow(t, store, "p1", 600)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Some of these are stale relative to each other; the ledger must
			// stay consistent and never move a counter backwards.
			_, _ = ledger.Observe(ctx, "p1", Observation{
				HoldersCount: int64(i * 10),
				VolumeUsd:    float64(i * 100),
			})
		}()
	}
	wg.Wait()

	status, err := ledger.GetStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), status.HoldersCount)
	assert.Equal(t, 5000.0, status.VolumeUsd)
}
