// internal/escrow/ledger.go
package escrow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/storage/models"
	"github.com/noottools/launch-engine/internal/types"
	"go.uber.org/zap"
)

// Unlock thresholds. Both must hold on the same observation.
const (
	MinHolders   = 500
	MinVolumeUsd = 25000.0
)

// Observation is one oracle reading for a pool.
type Observation struct {
	HoldersCount int64
	VolumeUsd    float64
	ObservedAt   time.Time
}

// Status is the externally visible escrow state of a pool.
type Status struct {
	PoolID         string
	LockedLpAmount float64
	LockedValueUsd float64
	WithdrawnLp    float64
	HoldersCount   int64
	VolumeUsd      float64
	IsUnlocked     bool
	HoldersTarget  int64
	VolumeTarget   float64
	UpdatedAt      time.Time
}

// Ledger applies oracle observations to escrow records and gates LP
// withdrawals on the unlock condition. Counters only move forward and the
// unlock flag flips exactly once.
type Ledger struct {
	store  storage.Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedger(store storage.Store, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger.Named("escrow-ledger"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// poolLock serializes writes per pool so concurrent observations cannot
// interleave a read-modify-write.
func (l *Ledger) poolLock(poolID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[poolID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[poolID] = lock
	}
	return lock
}

// Observe records an oracle reading. Readings that would lower either counter
// are rejected with StaleObservationError and leave the stored values intact.
// When both thresholds are met the escrow unlocks; once unlocked it never
// relocks, and further observations keep updating the counters.
func (l *Ledger) Observe(ctx context.Context, poolID string, obs Observation) (*Status, error) {
	if obs.HoldersCount < 0 {
		return nil, types.NewValidationError("holdersCount", "must not be negative")
	}
	if obs.VolumeUsd < 0 {
		return nil, types.NewValidationError("volumeUsd", "must not be negative")
	}

	lock := l.poolLock(poolID)
	lock.Lock()
	defer lock.Unlock()

	record, err := l.store.GetEscrow(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("escrow lookup for pool %s: %w", poolID, err)
	}

	if obs.HoldersCount < record.HoldersCount {
		return nil, &types.StaleObservationError{
			PoolID:   poolID,
			Counter:  "holders_count",
			Previous: float64(record.HoldersCount),
			Observed: float64(obs.HoldersCount),
		}
	}
	if obs.VolumeUsd < record.VolumeUsd {
		return nil, &types.StaleObservationError{
			PoolID:   poolID,
			Counter:  "volume_usd",
			Previous: record.VolumeUsd,
			Observed: obs.VolumeUsd,
		}
	}

	record.HoldersCount = obs.HoldersCount
	record.VolumeUsd = obs.VolumeUsd
	record.UpdatedAt = time.Now().UTC()

	if !record.IsUnlocked && record.HoldersCount >= MinHolders && record.VolumeUsd >= MinVolumeUsd {
		record.IsUnlocked = true
		l.logger.Info("escrow unlocked",
			zap.String("pool_id", poolID),
			zap.Int64("holders", record.HoldersCount),
			zap.Float64("volume_usd", record.VolumeUsd))
	}

	if err := l.store.UpdateEscrow(ctx, record); err != nil {
		return nil, fmt.Errorf("escrow update for pool %s: %w", poolID, err)
	}
	return statusOf(record), nil
}

// Withdraw releases locked LP shares after unlock. Before unlock every
// attempt fails with ErrEscrowStillLocked regardless of amount.
func (l *Ledger) Withdraw(ctx context.Context, poolID string, amount float64) (*Status, error) {
	if amount <= 0 {
		return nil, types.NewValidationError("amount", "must be positive")
	}

	lock := l.poolLock(poolID)
	lock.Lock()
	defer lock.Unlock()

	record, err := l.store.GetEscrow(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("escrow lookup for pool %s: %w", poolID, err)
	}
	if !record.IsUnlocked {
		return nil, types.ErrEscrowStillLocked
	}

	available := record.LockedLpAmount - record.WithdrawnLp
	if amount > available {
		return nil, types.NewValidationError("amount",
			fmt.Sprintf("exceeds available %v LP", available))
	}

	record.WithdrawnLp += amount
	record.UpdatedAt = time.Now().UTC()
	if err := l.store.UpdateEscrow(ctx, record); err != nil {
		return nil, fmt.Errorf("escrow update for pool %s: %w", poolID, err)
	}

	l.logger.Info("escrow withdrawal",
		zap.String("pool_id", poolID),
		zap.Float64("amount", amount),
		zap.Float64("remaining", record.LockedLpAmount-record.WithdrawnLp))
	return statusOf(record), nil
}

// GetStatus reads the current escrow state of a pool.
func (l *Ledger) GetStatus(ctx context.Context, poolID string) (*Status, error) {
	record, err := l.store.GetEscrow(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("escrow lookup for pool %s: %w", poolID, err)
	}
	return statusOf(record), nil
}

// ListLocked returns the pool ids of all escrows still awaiting unlock.
func (l *Ledger) ListLocked(ctx context.Context) ([]string, error) {
	records, err := l.store.ListLockedEscrows(ctx)
	if err != nil {
		return nil, fmt.Errorf("locked escrow listing: %w", err)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.PoolID)
	}
	return ids, nil
}

func statusOf(record *models.EscrowRecord) *Status {
	return &Status{
		PoolID:         record.PoolID,
		LockedLpAmount: record.LockedLpAmount,
		LockedValueUsd: record.LockedValueUsd,
		WithdrawnLp:    record.WithdrawnLp,
		HoldersCount:   record.HoldersCount,
		VolumeUsd:      record.VolumeUsd,
		IsUnlocked:     record.IsUnlocked,
		HoldersTarget:  MinHolders,
		VolumeTarget:   MinVolumeUsd,
		UpdatedAt:      record.UpdatedAt,
	}
}
