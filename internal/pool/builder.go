// internal/pool/builder.go
package pool

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/storage/models"
	"github.com/noottools/launch-engine/internal/types"
	"go.uber.org/zap"
)

// Builder creates liquidity pools and their paired escrow records.
type Builder struct {
	venues map[types.Venue]Venue
	store  storage.Store
	fees   FeeAccruer
	dir    *directory.Directory
	logger *zap.Logger
}

func NewBuilder(venues []Venue, store storage.Store, fees FeeAccruer, dir *directory.Directory, logger *zap.Logger) *Builder {
	byName := make(map[types.Venue]Venue, len(venues))
	for _, v := range venues {
		byName[v.Name()] = v
	}
	return &Builder{
		venues: byName,
		store:  store,
		fees:   fees,
		dir:    dir,
		logger: logger.Named("pool-builder"),
	}
}

// LPSharesIssued is the constant-product LP issuance for a deposit. The
// implied initial price is quoteAmount/tokenAmount.
func LPSharesIssued(tokenAmount, quoteAmount float64) float64 {
	return math.Sqrt(tokenAmount * quoteAmount)
}

// Create submits the pool deposit to the selected venue and, on
// confirmation, records the pool and its escrow atomically. A pool is never
// recorded without its escrow, and vice versa.
func (b *Builder) Create(ctx context.Context, params CreateParams) (*CreateResult, error) {
	if err := validateParams(params); err != nil {
		return nil, &types.PoolCreationError{Stage: "validate", Err: err}
	}

	token, err := b.store.GetToken(ctx, params.TokenID)
	if err != nil {
		return nil, &types.PoolCreationError{Stage: "token-lookup", Err: err}
	}
	if token.MintAddress == "" {
		return nil, &types.PoolCreationError{Stage: "token-lookup",
			Err: fmt.Errorf("token %s is not yet minted", params.TokenID)}
	}

	venue, ok := b.venues[params.AMM]
	if !ok {
		return nil, &types.PoolCreationError{Stage: "validate",
			Err: types.NewValidationError("amm", fmt.Sprintf("venue %q is not supported", params.AMM))}
	}

	lpShares := LPSharesIssued(params.TokenAmount, params.QuoteAmount)
	lockedLp := lpShares * LockFraction

	quoteUsdPrice := params.QuoteUsdPrice
	if quoteUsdPrice <= 0 {
		quoteUsdPrice = 1.0
	}
	// Pool value at creation is twice the quote side; the escrow snapshot
	// covers the locked fraction of it.
	lockedValueUsd := LockFraction * 2 * params.QuoteAmount * quoteUsdPrice

	deposit, err := b.buildDeposit(token, params)
	if err != nil {
		return nil, &types.PoolCreationError{Stage: "deposit", Err: err}
	}

	venuePool, err := venue.CreatePool(ctx, deposit)
	if err != nil {
		return nil, &types.PoolCreationError{Stage: "venue", Err: err}
	}

	now := time.Now().UTC()
	poolRow := &models.Pool{
		ID:             uuid.New().String(),
		TokenID:        params.TokenID,
		AMM:            string(params.AMM),
		QuoteAsset:     string(params.QuoteAsset),
		TokenAmount:    params.TokenAmount,
		QuoteAmount:    params.QuoteAmount,
		LPSharesIssued: lpShares,
		PoolAddress:    venuePool.PoolAddress.String(),
		LPMint:         venuePool.LPMint.String(),
		EscrowAddress:  venuePool.EscrowVault.String(),
		CreatedAt:      now,
	}
	escrowRow := &models.EscrowRecord{
		PoolID:         poolRow.ID,
		LockedLpAmount: lockedLp,
		LockedValueUsd: lockedValueUsd,
		UpdatedAt:      now,
	}

	if err := b.store.CreatePoolWithEscrow(ctx, poolRow, escrowRow); err != nil {
		return nil, &types.PoolCreationError{Stage: "record", Err: err}
	}

	// Queue the migration cut for the burn pipeline.
	b.fees.Accrue(types.SourceLiquidityMigration, params.QuoteAmount*MigrationFeeFraction)

	b.logger.Info("pool created",
		zap.String("pool_id", poolRow.ID),
		zap.String("pool_address", poolRow.PoolAddress),
		zap.String("amm", poolRow.AMM),
		zap.Float64("lp_shares", lpShares),
		zap.Float64("locked_lp", lockedLp),
		zap.String("signature", venuePool.Signature.String()))

	return &CreateResult{
		PoolID:         poolRow.ID,
		PoolAddress:    venuePool.PoolAddress,
		LPSharesIssued: lpShares,
		LockedLpAmount: lockedLp,
		EscrowAddress:  venuePool.EscrowVault,
	}, nil
}

func (b *Builder) buildDeposit(token *models.Token, params CreateParams) (Deposit, error) {
	tokenMint, err := solana.PublicKeyFromBase58(token.MintAddress)
	if err != nil {
		return Deposit{}, fmt.Errorf("token mint address: %w", err)
	}
	quoteMint, err := b.dir.QuoteMint(params.QuoteAsset)
	if err != nil {
		return Deposit{}, err
	}
	quoteDecimals, err := b.dir.QuoteDecimals(params.QuoteAsset)
	if err != nil {
		return Deposit{}, err
	}
	return Deposit{
		TokenMint:     tokenMint,
		QuoteMint:     quoteMint,
		TokenAmount:   params.TokenAmount,
		QuoteAmount:   params.QuoteAmount,
		TokenDecimals: token.Decimals,
		QuoteDecimals: quoteDecimals,
	}, nil
}

func validateParams(params CreateParams) error {
	if params.TokenID == "" {
		return types.NewValidationError("tokenId", "must not be empty")
	}
	if params.TokenAmount <= 0 {
		return types.NewValidationError("tokenAmount", "must be positive")
	}
	if params.QuoteAmount <= 0 {
		return types.NewValidationError("quoteAmount", "must be positive")
	}
	if !types.ValidQuoteAsset(params.QuoteAsset) {
		return types.NewValidationError("quoteAsset", "unsupported quote asset")
	}
	if !types.ValidVenue(params.AMM) {
		return types.NewValidationError("amm", "unsupported venue")
	}
	return nil
}
