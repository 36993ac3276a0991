// internal/pool/raydium.go
package pool

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/chain"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/noottools/launch-engine/internal/types"
	"github.com/noottools/launch-engine/internal/wallet"
	"go.uber.org/zap"
)

const ixInitializeCPMMPool = 0x01

// raydiumVenue creates constant-product pools on the raydium CPMM program.
type raydiumVenue struct {
	chain  chain.Client
	signer wallet.Signer
	dir    *directory.Directory
	logger *zap.Logger
}

func NewRaydiumVenue(chainClient chain.Client, signer wallet.Signer, dir *directory.Directory, logger *zap.Logger) Venue {
	return &raydiumVenue{
		chain:  chainClient,
		signer: signer,
		dir:    dir,
		logger: logger.Named("raydium-venue"),
	}
}

func (v *raydiumVenue) Name() types.Venue { return types.VenueRaydium }

func (v *raydiumVenue) CreatePool(ctx context.Context, deposit Deposit) (*VenuePool, error) {
	program := directory.RaydiumCPMMProgramID
	addrs, err := derivePoolAddresses(program, v.dir.EscrowProgram(), deposit)
	if err != nil {
		return nil, err
	}

	ix := buildInitializePoolInstruction(program, addrs, deposit, v.signer.PublicKey())

	signature, err := submitVenueTransaction(ctx, v.chain, v.signer, ix)
	if err != nil {
		return nil, fmt.Errorf("raydium pool deposit: %w", err)
	}

	v.logger.Info("raydium pool confirmed",
		zap.String("pool", addrs.pool.String()),
		zap.String("signature", signature.String()))

	return &VenuePool{
		PoolAddress: addrs.pool,
		LPMint:      addrs.lpMint,
		EscrowVault: addrs.escrowVault,
		Signature:   signature,
	}, nil
}

type poolAddresses struct {
	pool        solana.PublicKey
	lpMint      solana.PublicKey
	baseVault   solana.PublicKey
	quoteVault  solana.PublicKey
	escrowVault solana.PublicKey
}

// derivePoolAddresses derives the pool PDA set. The escrow vault lives under
// the escrow program, seeded on the pool address, so LP shares land in an
// account only the escrow program can sign for.
func derivePoolAddresses(venueProgram, escrowProgram solana.PublicKey, deposit Deposit) (poolAddresses, error) {
	var addrs poolAddresses
	var err error

	addrs.pool, _, err = solana.FindProgramAddress(
		[][]byte{[]byte("pool"), deposit.TokenMint.Bytes(), deposit.QuoteMint.Bytes()},
		venueProgram)
	if err != nil {
		return addrs, fmt.Errorf("pool pda: %w", err)
	}
	addrs.lpMint, _, err = solana.FindProgramAddress(
		[][]byte{[]byte("lp_mint"), addrs.pool.Bytes()}, venueProgram)
	if err != nil {
		return addrs, fmt.Errorf("lp mint pda: %w", err)
	}
	addrs.baseVault, _, err = solana.FindProgramAddress(
		[][]byte{[]byte("vault"), addrs.pool.Bytes(), deposit.TokenMint.Bytes()}, venueProgram)
	if err != nil {
		return addrs, fmt.Errorf("base vault pda: %w", err)
	}
	addrs.quoteVault, _, err = solana.FindProgramAddress(
		[][]byte{[]byte("vault"), addrs.pool.Bytes(), deposit.QuoteMint.Bytes()}, venueProgram)
	if err != nil {
		return addrs, fmt.Errorf("quote vault pda: %w", err)
	}
	addrs.escrowVault, _, err = solana.FindProgramAddress(
		[][]byte{[]byte("escrow"), addrs.pool.Bytes()}, escrowProgram)
	if err != nil {
		return addrs, fmt.Errorf("escrow vault pda: %w", err)
	}
	return addrs, nil
}

func buildInitializePoolInstruction(program solana.PublicKey, addrs poolAddresses, deposit Deposit, payer solana.PublicKey) solana.Instruction {
	// Layout: [ u8 code, token_amount(u64 LE), quote_amount(u64 LE) ]
	data := make([]byte, 1+8+8)
	data[0] = ixInitializeCPMMPool
	binary.LittleEndian.PutUint64(data[1:9], baseUnits(deposit.TokenAmount, deposit.TokenDecimals))
	binary.LittleEndian.PutUint64(data[9:17], baseUnits(deposit.QuoteAmount, deposit.QuoteDecimals))

	accounts := []*solana.AccountMeta{
		{PublicKey: addrs.pool, IsWritable: true, IsSigner: false},
		{PublicKey: addrs.lpMint, IsWritable: true, IsSigner: false},
		{PublicKey: deposit.TokenMint, IsWritable: false, IsSigner: false},
		{PublicKey: deposit.QuoteMint, IsWritable: false, IsSigner: false},
		{PublicKey: addrs.baseVault, IsWritable: true, IsSigner: false},
		{PublicKey: addrs.quoteVault, IsWritable: true, IsSigner: false},
		{PublicKey: addrs.escrowVault, IsWritable: true, IsSigner: false},
		{PublicKey: payer, IsWritable: true, IsSigner: true},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(program, accounts, data)
}

// baseUnits scales a whole-token amount by its mint's decimals. SOL carries
// 9, USDC 6; launched tokens carry whatever their mint was finalized with.
func baseUnits(amount float64, decimals uint8) uint64 {
	return uint64(math.Round(amount * math.Pow10(int(decimals))))
}

// submitVenueTransaction builds, signs and submits a single-instruction
// venue transaction.
func submitVenueTransaction(ctx context.Context, chainClient chain.Client, signer wallet.Signer, ix solana.Instruction) (solana.Signature, error) {
	blockhash, err := chainClient.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("blockhash query: %w", err)
	}
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash,
		solana.TransactionPayer(signer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("transaction build: %w", err)
	}
	if err := signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("wallet signing: %w", err)
	}
	return chainClient.SubmitAndConfirm(ctx, tx)
}
