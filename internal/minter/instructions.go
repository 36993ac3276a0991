// internal/minter/instructions.go
package minter

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// SPL token instruction codes.
const (
	ixInitializeMint = 0
	ixMintTo         = 7
)

// Mint account sizes: base layout, and with the transfer-hook extension TLV.
const (
	mintAccountSize         = 82
	mintAccountSizeWithHook = 234
)

var associatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// createAccountInstruction allocates the mint account under the token
// program, sized for any creation-time extensions.
func createAccountInstruction(funding, newAccount solana.PublicKey, lamports, space uint64, owner solana.PublicKey) solana.Instruction {
	return system.NewCreateAccountInstruction(lamports, space, owner, funding, newAccount).Build()
}

// initializeMintInstruction finalizes the mint's parameters. After this
// confirms, no further extensions can be attached.
func initializeMintInstruction(mint solana.PublicKey, decimals uint8, authority, tokenProgram solana.PublicKey) solana.Instruction {
	// Layout: [ u8 code, u8 decimals, mint_authority(32), freeze_option(1) ]
	data := make([]byte, 1+1+32+1)
	data[0] = ixInitializeMint
	data[1] = decimals
	copy(data[2:34], authority.Bytes())
	data[34] = 0 // no freeze authority

	accounts := []*solana.AccountMeta{
		{PublicKey: mint, IsWritable: true, IsSigner: false},
		{PublicKey: solana.SysVarRentPubkey, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(tokenProgram, accounts, data)
}

// createATAIdempotentInstruction creates the owner's associated token
// account if it does not exist yet.
func createATAIdempotentInstruction(payer, owner, ata, mint, tokenProgram solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsWritable: true, IsSigner: true},
		{PublicKey: ata, IsWritable: true, IsSigner: false},
		{PublicKey: owner, IsWritable: false, IsSigner: false},
		{PublicKey: mint, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: tokenProgram, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SysVarRentPubkey, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(associatedTokenProgramID, accounts, []byte{1})
}

// mintToInstruction mints rawAmount base units to destination.
func mintToInstruction(mint, destination, authority solana.PublicKey, rawAmount uint64, tokenProgram solana.PublicKey) solana.Instruction {
	// Layout: [ u8 code, amount(u64 LE) ]
	data := make([]byte, 1+8)
	data[0] = ixMintTo
	binary.LittleEndian.PutUint64(data[1:9], rawAmount)

	accounts := []*solana.AccountMeta{
		{PublicKey: mint, IsWritable: true, IsSigner: false},
		{PublicKey: destination, IsWritable: true, IsSigner: false},
		{PublicKey: authority, IsWritable: false, IsSigner: true},
	}
	return solana.NewInstruction(tokenProgram, accounts, data)
}
