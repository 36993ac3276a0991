// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/storage/models"
)

// Store is an in-memory store used by tests and local runs.
type Store struct {
	mu         sync.RWMutex
	tokens     map[string]*models.Token
	pools      map[string]*models.Pool
	escrows    map[string]*models.EscrowRecord
	burnEvents []*models.BurnEvent

	// FailPoolCreate forces the next CreatePoolWithEscrow to fail, for
	// failure-injection tests around the pool/escrow atomicity invariant.
	FailPoolCreate bool
}

func NewStore() *Store {
	return &Store{
		tokens:  make(map[string]*models.Token),
		pools:   make(map[string]*models.Pool),
		escrows: make(map[string]*models.EscrowRecord),
	}
}

func (m *Store) RunMigrations() error { return nil }

func (m *Store) CreateToken(_ context.Context, token *models.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[token.ID]; ok {
		return fmt.Errorf("token %s already exists", token.ID)
	}
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *Store) GetToken(_ context.Context, id string) (*models.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (m *Store) SetTokenMintAddress(_ context.Context, id, mintAddress string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[id]
	if !ok {
		return storage.ErrNotFound
	}
	if token.MintAddress != "" {
		return fmt.Errorf("token %s already has a mint address", id)
	}
	token.MintAddress = mintAddress
	return nil
}

func (m *Store) SetTokenSupplyMinted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[id]
	if !ok {
		return storage.ErrNotFound
	}
	token.SupplyMinted = true
	return nil
}

func (m *Store) CreatePoolWithEscrow(_ context.Context, pool *models.Pool, escrow *models.EscrowRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPoolCreate {
		m.FailPoolCreate = false
		return fmt.Errorf("injected store failure")
	}
	if _, ok := m.pools[pool.ID]; ok {
		return fmt.Errorf("pool %s already exists", pool.ID)
	}
	poolCp := *pool
	escrowCp := *escrow
	m.pools[pool.ID] = &poolCp
	m.escrows[escrow.PoolID] = &escrowCp
	return nil
}

func (m *Store) GetPool(_ context.Context, id string) (*models.Pool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pool, ok := m.pools[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *pool
	return &cp, nil
}

func (m *Store) GetPoolByAddress(_ context.Context, poolAddress string) (*models.Pool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pool := range m.pools {
		if pool.PoolAddress == poolAddress {
			cp := *pool
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *Store) GetEscrow(_ context.Context, poolID string) (*models.EscrowRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	escrow, ok := m.escrows[poolID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *escrow
	return &cp, nil
}

func (m *Store) UpdateEscrow(_ context.Context, escrow *models.EscrowRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.escrows[escrow.PoolID]; !ok {
		return storage.ErrNotFound
	}
	cp := *escrow
	cp.UpdatedAt = time.Now().UTC()
	m.escrows[escrow.PoolID] = &cp
	return nil
}

func (m *Store) ListLockedEscrows(_ context.Context) ([]*models.EscrowRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var locked []*models.EscrowRecord
	for _, escrow := range m.escrows {
		if !escrow.IsUnlocked {
			cp := *escrow
			locked = append(locked, &cp)
		}
	}
	sort.Slice(locked, func(i, j int) bool { return locked[i].PoolID < locked[j].PoolID })
	return locked, nil
}

func (m *Store) AppendBurnEvent(_ context.Context, event *models.BurnEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.burnEvents = append(m.burnEvents, &cp)
	return nil
}

func (m *Store) ListBurnEvents(_ context.Context, limit, offset int) ([]*models.BurnEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(m.burnEvents) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(m.burnEvents) {
		end = len(m.burnEvents)
	}
	out := make([]*models.BurnEvent, 0, end-offset)
	for _, event := range m.burnEvents[offset:end] {
		cp := *event
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Store) CountTokens(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, token := range m.tokens {
		if token.MintAddress != "" {
			count++
		}
	}
	return count, nil
}

func (m *Store) SumBurned(_ context.Context) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, event := range m.burnEvents {
		total += event.Amount
	}
	return total, nil
}

func (m *Store) SumVolumeUsd(_ context.Context) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, escrow := range m.escrows {
		total += escrow.VolumeUsd
	}
	return total, nil
}

func (m *Store) SumHolders(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, escrow := range m.escrows {
		total += escrow.HoldersCount
	}
	return total, nil
}

var _ storage.Store = (*Store)(nil)
