// internal/burn/instructions.go
package burn

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

const ixTransferChecked = 12

// transferCheckedInstruction moves base units of mint from source to
// destination token accounts. TransferChecked is required for extension
// mints; the plain transfer opcode is rejected by the token-2022 program.
func transferCheckedInstruction(
	tokenProgram solana.PublicKey,
	source, mint, destination, owner solana.PublicKey,
	amount uint64,
	decimals uint8,
) solana.Instruction {
	data := make([]byte, 1+8+1)
	data[0] = ixTransferChecked
	binary.LittleEndian.PutUint64(data[1:9], amount)
	data[9] = decimals

	accounts := []*solana.AccountMeta{
		{PublicKey: source, IsWritable: true, IsSigner: false},
		{PublicKey: mint, IsWritable: false, IsSigner: false},
		{PublicKey: destination, IsWritable: true, IsSigner: false},
		{PublicKey: owner, IsWritable: false, IsSigner: true},
	}
	return solana.NewInstruction(tokenProgram, accounts, data)
}

// createATAIdempotentInstruction creates the associated token account for
// owner+mint if it does not exist yet.
func createATAIdempotentInstruction(
	payer, owner, mint, ata, tokenProgram solana.PublicKey,
) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsWritable: true, IsSigner: true},
		{PublicKey: ata, IsWritable: true, IsSigner: false},
		{PublicKey: owner, IsWritable: false, IsSigner: false},
		{PublicKey: mint, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: tokenProgram, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(solana.SPLAssociatedTokenAccountProgramID, accounts, []byte{1})
}
