// internal/pool/orca.go
package pool

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/chain"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/noottools/launch-engine/internal/types"
	"github.com/noottools/launch-engine/internal/wallet"
	"go.uber.org/zap"
)

const ixInitializeWhirlpool = 0x02

// orcaVenue creates pools on the orca whirlpool program.
type orcaVenue struct {
	chain  chain.Client
	signer wallet.Signer
	dir    *directory.Directory
	logger *zap.Logger
}

func NewOrcaVenue(chainClient chain.Client, signer wallet.Signer, dir *directory.Directory, logger *zap.Logger) Venue {
	return &orcaVenue{
		chain:  chainClient,
		signer: signer,
		dir:    dir,
		logger: logger.Named("orca-venue"),
	}
}

func (v *orcaVenue) Name() types.Venue { return types.VenueOrca }

func (v *orcaVenue) CreatePool(ctx context.Context, deposit Deposit) (*VenuePool, error) {
	program := directory.OrcaWhirlpoolProgramID
	addrs, err := derivePoolAddresses(program, v.dir.EscrowProgram(), deposit)
	if err != nil {
		return nil, err
	}

	ix := buildInitializeWhirlpoolInstruction(program, addrs, deposit, v.signer.PublicKey())

	signature, err := submitVenueTransaction(ctx, v.chain, v.signer, ix)
	if err != nil {
		return nil, fmt.Errorf("orca pool deposit: %w", err)
	}

	v.logger.Info("orca pool confirmed",
		zap.String("pool", addrs.pool.String()),
		zap.String("signature", signature.String()))

	return &VenuePool{
		PoolAddress: addrs.pool,
		LPMint:      addrs.lpMint,
		EscrowVault: addrs.escrowVault,
		Signature:   signature,
	}, nil
}

func buildInitializeWhirlpoolInstruction(program solana.PublicKey, addrs poolAddresses, deposit Deposit, payer solana.PublicKey) solana.Instruction {
	// Layout: [ u8 code, token_amount(u64 LE), quote_amount(u64 LE),
	// tick_spacing(u16 LE) ]
	data := make([]byte, 1+8+8+2)
	data[0] = ixInitializeWhirlpool
	binary.LittleEndian.PutUint64(data[1:9], baseUnits(deposit.TokenAmount, deposit.TokenDecimals))
	binary.LittleEndian.PutUint64(data[9:17], baseUnits(deposit.QuoteAmount, deposit.QuoteDecimals))
	binary.LittleEndian.PutUint16(data[17:19], 64)

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
