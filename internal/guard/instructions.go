// internal/guard/instructions.go
package guard

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Token-2022 extension instruction codes used below.
const (
	ixInitializeTransferHook = 36
	ixInitializeAntiSniper   = 0
)

// InitializeHookInstruction builds the extension-attach instruction for the
// mint. Extensions on this asset class are append-only-at-creation: the
// instruction must precede initialize-mint in the same transaction, the
// token program rejects it afterwards.
func InitializeHookInstruction(mint, authority, hookProgram, tokenProgram solana.PublicKey) solana.Instruction {
	// Layout: [ u8 code, authority(32), hook_program(32) ]
	data := make([]byte, 1+32+32)
	data[0] = ixInitializeTransferHook
	copy(data[1:33], authority.Bytes())
	copy(data[33:65], hookProgram.Bytes())

	accounts := []*solana.AccountMeta{
		{PublicKey: mint, IsWritable: true, IsSigner: false},
	}
	return solana.NewInstruction(tokenProgram, accounts, data)
}

// InitializeStateInstruction builds the hook-program instruction that writes
// the per-mint window state account (seeded on the mint address).
func InitializeStateInstruction(mint, payer, hookProgram solana.PublicKey, launchTimestamp, windowSeconds int64) (solana.Instruction, error) {
	statePDA, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("anti_sniper"), mint.Bytes()},
		hookProgram,
	)
	if err != nil {
		return nil, err
	}

	// Layout: [ u8 code, launch_timestamp(i64 LE), window_seconds(i64 LE) ]
	data := make([]byte, 1+8+8)
	data[0] = ixInitializeAntiSniper
	binary.LittleEndian.PutUint64(data[1:9], uint64(launchTimestamp))
	binary.LittleEndian.PutUint64(data[9:17], uint64(windowSeconds))

	accounts := []*solana.AccountMeta{
		{PublicKey: statePDA, IsWritable: true, IsSigner: false},
		{PublicKey: mint, IsWritable: false, IsSigner: false},
		{PublicKey: payer, IsWritable: true, IsSigner: true},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(hookProgram, accounts, data), nil
}
