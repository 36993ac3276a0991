// internal/wallet/wallet_test.go
package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWalletRejectsBadKeys(t *testing.T) {
	_, err := NewWallet("not-base58!!!")
	assert.Error(t, err)

	_, err = NewWallet("abc") // decodes, wrong length
	assert.Error(t, err)
}

func TestSignTransactionPartial(t *testing.T) {
	w, err := NewRandomWallet()
	require.NoError(t, err)

	other := solana.NewWallet()
	ix := solana.NewInstruction(solana.SystemProgramID, []*solana.AccountMeta{
		{PublicKey: w.PublicKey(), IsWritable: true, IsSigner: true},
		{PublicKey: other.PublicKey(), IsWritable: true, IsSigner: true},
	}, []byte{0})
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{},
		solana.TransactionPayer(w.PublicKey()))
	require.NoError(t, err)

	// Only the wallet's own signature is filled in; the other slot stays
	// open for the co-signer.
	require.NoError(t, w.SignTransaction(tx))
	assert.False(t, tx.Signatures[0].IsZero())
	assert.True(t, tx.Signatures[1].IsZero())
}

func TestAssociatedTokenAddressSeedsTokenProgram(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	addr, err := AssociatedTokenAddress(owner, directory.Token2022ProgramID, mint)
	require.NoError(t, err)

	expected, _, err := solana.FindProgramAddress(
		[][]byte{owner.Bytes(), directory.Token2022ProgramID.Bytes(), mint.Bytes()},
		solana.SPLAssociatedTokenAccountProgramID)
	require.NoError(t, err)
	assert.Equal(t, expected, addr)

	// The legacy derivation seeds the classic token program and lands on a
	// different account for extension mints.
	legacy, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.NotEqual(t, legacy, addr)
}
