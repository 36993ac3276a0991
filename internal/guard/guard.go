// internal/guard/guard.go
package guard

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/directory"
)

// WindowSeconds is the protocol anti-sniper window after mint.
const WindowSeconds = 30

// State of the transfer-restriction policy for one asset.
type State int

const (
	// StateActive blocks transfers into or out of pool-vault accounts.
	// Wallet-to-wallet transfers are always permitted.
	StateActive State = iota
	// StateExpired permits all transfers. The transition is time-triggered
	// at mint + window and is irreversible.
	StateExpired
)

// AccountClass classifies one side of a transfer.
type AccountClass int

const (
	ClassWallet AccountClass = iota
	ClassPoolVault
)

// ErrTransferBlocked is returned while the window is active and a pool-vault
// account is touched.
var ErrTransferBlocked = errors.New("transfer blocked by anti-sniper window")

// Guard is the transfer-restriction policy attached to one mint. It is a
// pure predicate over (time, source class, destination class); no per-target
// mutable counters.
type Guard struct {
	mint     solana.PublicKey
	launchAt time.Time
	window   time.Duration
	disabled atomic.Bool
}

// New creates a guard for mint launched at launchAt with the canonical window.
func New(mint solana.PublicKey, launchAt time.Time) *Guard {
	return NewWithWindow(mint, launchAt, WindowSeconds*time.Second)
}

// NewWithWindow creates a guard with an explicit window. Used in tests.
func NewWithWindow(mint solana.PublicKey, launchAt time.Time, window time.Duration) *Guard {
	return &Guard{
		mint:     mint,
		launchAt: launchAt,
		window:   window,
	}
}

// Mint returns the guarded asset.
func (g *Guard) Mint() solana.PublicKey { return g.mint }

// StateAt returns the policy state at time t. The transition
// ACTIVE -> EXPIRED happens exactly at launch + window; a transfer submitted
// during ACTIVE but executed at or after expiry is evaluated as EXPIRED.
func (g *Guard) StateAt(t time.Time) State {
	if g.disabled.Load() {
		return StateExpired
	}
	if t.Before(g.launchAt.Add(g.window)) {
		return StateActive
	}
	return StateExpired
}

// Evaluate applies the policy to a transfer executed at time t.
func (g *Guard) Evaluate(t time.Time, source, destination AccountClass) error {
	if g.StateAt(t) == StateExpired {
		return nil
	}
	if source == ClassPoolVault || destination == ClassPoolVault {
		return ErrTransferBlocked
	}
	return nil
}

// Disable switches protection off before natural expiry. One-way; matches
// the emergency switch of the on-chain hook.
func (g *Guard) Disable() {
	g.disabled.Store(true)
}

// ClassOf classifies a token account by its owning program: accounts owned
// by an AMM venue program are pool vaults, everything else is a wallet.
func ClassOf(owner solana.PublicKey) AccountClass {
	if owner.Equals(directory.RaydiumCPMMProgramID) ||
		owner.Equals(directory.OrcaWhirlpoolProgramID) {
		return ClassPoolVault
	}
	return ClassWallet
}
