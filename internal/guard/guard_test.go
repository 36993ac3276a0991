// internal/guard/guard_test.go
package guard

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/stretchr/testify/assert"
)

func TestStateTransitionAtWindowBoundary(t *testing.T) {
	launch := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := New(solana.NewWallet().PublicKey(), launch)

	assert.Equal(t, StateActive, g.StateAt(launch))
	assert.Equal(t, StateActive, g.StateAt(launch.Add(WindowSeconds*time.Second-time.Nanosecond)))
	// The transition happens exactly at launch + window.
	assert.Equal(t, StateExpired, g.StateAt(launch.Add(WindowSeconds*time.Second)))
	assert.Equal(t, StateExpired, g.StateAt(launch.Add(time.Hour)))
}

func TestEvaluateBlocksPoolVaultsDuringWindow(t *testing.T) {
	launch := time.Now().UTC()
	g := New(solana.NewWallet().PublicKey(), launch)
	during := launch.Add(10 * time.Second)

	assert.ErrorIs(t, g.Evaluate(during, ClassWallet, ClassPoolVault), ErrTransferBlocked)
	assert.ErrorIs(t, g.Evaluate(during, ClassPoolVault, ClassWallet), ErrTransferBlocked)
	// Wallet-to-wallet is always permitted.
	assert.NoError(t, g.Evaluate(during, ClassWallet, ClassWallet))
}

func TestEvaluateUsesExecutionTime(t *testing.T) {
	launch := time.Now().UTC()
	g := New(solana.NewWallet().PublicKey(), launch)

	// A transfer submitted during the window but executed after expiry is
	// judged by its execution time.
	after := launch.Add(WindowSeconds*time.Second + time.Second)
	assert.NoError(t, g.Evaluate(after, ClassWallet, ClassPoolVault))
}

func TestDisableIsOneWay(t *testing.T) {
	launch := time.Now().UTC()
	g := New(solana.NewWallet().PublicKey(), launch)
	during := launch.Add(5 * time.Second)

	assert.ErrorIs(t, g.Evaluate(during, ClassWallet, ClassPoolVault), ErrTransferBlocked)
	g.Disable()
	assert.Equal(t, StateExpired, g.StateAt(during))
	assert.NoError(t, g.Evaluate(during, ClassWallet, ClassPoolVault))
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, ClassPoolVault, ClassOf(directory.RaydiumCPMMProgramID))
	assert.Equal(t, ClassPoolVault, ClassOf(directory.OrcaWhirlpoolProgramID))
	assert.Equal(t, ClassWallet, ClassOf(solana.NewWallet().PublicKey()))
	assert.Equal(t, ClassWallet, ClassOf(solana.SystemProgramID))
}
