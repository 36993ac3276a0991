// internal/pool/raydium_test.go
package pool

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseUnits(t *testing.T) {
	assert.Equal(t, uint64(1_500_000_000), baseUnits(1.5, 9))
	assert.Equal(t, uint64(2_000_000), baseUnits(2, 6))
	assert.Equal(t, uint64(7), baseUnits(7, 0))
}

func TestInitializeInstructionsScaleByDepositDecimals(t *testing.T) {
	deposit := Deposit{
		TokenMint:     solana.NewWallet().PublicKey(),
		QuoteMint:     directory.USDCMint,
		TokenAmount:   1.5,
		QuoteAmount:   2,
		TokenDecimals: 9,
		QuoteDecimals: 6,
	}
	addrs, err := derivePoolAddresses(directory.RaydiumCPMMProgramID,
		solana.NewWallet().PublicKey(), deposit)
	require.NoError(t, err)
	payer := solana.NewWallet().PublicKey()

	ix := buildInitializePoolInstruction(directory.RaydiumCPMMProgramID, addrs, deposit, payer)
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), binary.LittleEndian.Uint64(data[1:9]))
	// A 6-decimal quote must not be scaled as if it carried 9.
	assert.Equal(t, uint64(2_000_000), binary.LittleEndian.Uint64(data[9:17]))

	whirl := buildInitializeWhirlpoolInstruction(directory.OrcaWhirlpoolProgramID, addrs, deposit, payer)
	wdata, err := whirl.Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), binary.LittleEndian.Uint64(wdata[1:9]))
	assert.Equal(t, uint64(2_000_000), binary.LittleEndian.Uint64(wdata[9:17]))
}
