// internal/burn/router.go
package burn

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/noottools/launch-engine/internal/aggregator"
	"github.com/noottools/launch-engine/internal/chain"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/storage/models"
	"github.com/noottools/launch-engine/internal/types"
	"github.com/noottools/launch-engine/internal/wallet"
	"go.uber.org/zap"
)

// ExecuteParams describe one swap-and-burn run.
type ExecuteParams struct {
	TokenID string
	Source  types.BurnSource
	// Amount is the quote-currency amount to spend from the source bucket.
	Amount      float64
	SlippageBps int
	// QuoteUsdPrice values the burn for the event log. Defaults to 1.
	QuoteUsdPrice float64
}

// ExecuteResult is the outcome of a completed swap-and-burn.
type ExecuteResult struct {
	EventID       string
	TokensBurned  float64
	QuoteSpent    float64
	ValueUsd      float64
	SwapSignature solana.Signature
	BurnSignature solana.Signature
}

// Router accrues quote-currency fees into per-source buckets and converts
// them into burned tokens. A bucket debit and its BurnEvent are
// all-or-nothing: a failure before the sink transfer restores the bucket and
// logs nothing. Once the sink transfer confirms the debit stands even if the
// event append fails; reconcile the logged signature via RecordExternal.
type Router struct {
	store  storage.Store
	agg    aggregator.Aggregator
	chain  chain.Client
	signer wallet.Signer
	dir    *directory.Directory
	logger *zap.Logger

	mu      sync.Mutex
	buckets map[types.BurnSource]float64
}

func NewRouter(store storage.Store, agg aggregator.Aggregator, chainClient chain.Client, signer wallet.Signer, dir *directory.Directory, logger *zap.Logger) *Router {
	return &Router{
		store:   store,
		agg:     agg,
		chain:   chainClient,
		signer:  signer,
		dir:     dir,
		logger:  logger.Named("burn-router"),
		buckets: make(map[types.BurnSource]float64),
	}
}

// Accrue adds quote-currency funds to a source bucket. Non-positive amounts
// and unknown sources are ignored.
func (r *Router) Accrue(source types.BurnSource, amount float64) {
	if amount <= 0 || !types.ValidBurnSource(source) {
		return
	}
	r.mu.Lock()
	r.buckets[source] += amount
	r.mu.Unlock()

	r.logger.Debug("fees accrued",
		zap.String("source", string(source)),
		zap.Float64("amount", amount))
}

// Balance reports the undisbursed quote-currency balance of a source bucket.
func (r *Router) Balance(source types.BurnSource) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buckets[source]
}

// ExecuteBurn debits the source bucket, swaps the quote amount into the
// launched token and sends the proceeds to the unspendable sink. Any failure
// between debit and the sink transfer restores the bucket in full.
func (r *Router) ExecuteBurn(ctx context.Context, params ExecuteParams) (*ExecuteResult, error) {
	if params.Amount <= 0 {
		return nil, &types.BurnExecutionError{Stage: "validate",
			Err: types.NewValidationError("amount", "must be positive")}
	}
	if !types.ValidBurnSource(params.Source) {
		return nil, &types.BurnExecutionError{Stage: "validate",
			Err: types.NewValidationError("source", "unknown burn source")}
	}
	slippageBps := params.SlippageBps
	if slippageBps <= 0 {
		slippageBps = types.MaxSlippageBpsDefault
	}

	if err := r.reserve(params.Source, params.Amount); err != nil {
		return nil, &types.BurnExecutionError{Stage: "reserve", Err: err}
	}

	result, err := r.execute(ctx, params, slippageBps)
	if err != nil {
		r.restore(params.Source, params.Amount)
		return nil, err
	}
	return result, nil
}

func (r *Router) execute(ctx context.Context, params ExecuteParams, slippageBps int) (*ExecuteResult, error) {
	token, err := r.store.GetToken(ctx, params.TokenID)
	if err != nil {
		return nil, &types.BurnExecutionError{Stage: "token-lookup", Err: err}
	}
	if token.MintAddress == "" {
		return nil, &types.BurnExecutionError{Stage: "token-lookup",
			Err: fmt.Errorf("token %s is not yet minted", params.TokenID)}
	}
	mint, err := solana.PublicKeyFromBase58(token.MintAddress)
	if err != nil {
		return nil, &types.BurnExecutionError{Stage: "token-lookup", Err: err}
	}

	quoteMint, err := r.dir.QuoteMint(types.QuoteSOL)
	if err != nil {
		return nil, &types.BurnExecutionError{Stage: "quote", Err: err}
	}

	route, err := r.agg.Quote(ctx, aggregator.QuoteRequest{
		InputMint:   quoteMint,
		OutputMint:  mint,
		AmountIn:    uint64(math.Round(params.Amount * float64(solana.LAMPORTS_PER_SOL))),
		SlippageBps: slippageBps,
	})
	if err != nil {
		return nil, &types.BurnExecutionError{Stage: "quote", Err: err}
	}

	swapSig, err := r.executeSwap(ctx, route)
	if err != nil {
		return nil, &types.BurnExecutionError{Stage: "swap", Err: err}
	}

	burnSig, err := r.sendToSink(ctx, mint, token.Decimals, route.AmountOut)
	if err != nil {
		return nil, &types.BurnExecutionError{Stage: "sink-transfer", Err: err}
	}

	tokensBurned := float64(route.AmountOut) / math.Pow10(int(token.Decimals))
	quoteUsdPrice := params.QuoteUsdPrice
	if quoteUsdPrice <= 0 {
		quoteUsdPrice = 1.0
	}
	valueUsd := params.Amount * quoteUsdPrice

	event := &models.BurnEvent{
		ID:          uuid.New().String(),
		Amount:      tokensBurned,
		ValueUsd:    valueUsd,
		SourceType:  string(params.Source),
		TxSignature: burnSig.String(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.store.AppendBurnEvent(ctx, event); err != nil {
		// The tokens are already in the sink; the debit stands. Surface the
		// recording failure instead of restoring and double-spending later.
		r.logger.Error("burn confirmed but event logging failed",
			zap.String("signature", burnSig.String()), zap.Error(err))
		return nil, &types.BurnExecutionError{Stage: "record", Err: err}
	}

	r.logger.Info("burn executed",
		zap.String("event_id", event.ID),
		zap.String("source", string(params.Source)),
		zap.Float64("tokens_burned", tokensBurned),
		zap.Float64("quote_spent", params.Amount),
		zap.String("signature", burnSig.String()))

	return &ExecuteResult{
		EventID:       event.ID,
		TokensBurned:  tokensBurned,
		QuoteSpent:    params.Amount,
		ValueUsd:      valueUsd,
		SwapSignature: swapSig,
		BurnSignature: burnSig,
	}, nil
}

// RecordExternal appends a burn event executed outside the router, e.g. a
// manual burn confirmed elsewhere. No bucket is debited.
func (r *Router) RecordExternal(ctx context.Context, amount, valueUsd float64, source types.BurnSource, txSignature string) (string, error) {
	if amount <= 0 {
		return "", types.NewValidationError("amount", "must be positive")
	}
	if !types.ValidBurnSource(source) {
		return "", types.NewValidationError("source", "unknown burn source")
	}
	if txSignature == "" {
		return "", types.NewValidationError("txSignature", "must not be empty")
	}
	event := &models.BurnEvent{
		ID:          uuid.New().String(),
		Amount:      amount,
		ValueUsd:    valueUsd,
		SourceType:  string(source),
		TxSignature: txSignature,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.store.AppendBurnEvent(ctx, event); err != nil {
		return "", fmt.Errorf("burn event append: %w", err)
	}
	return event.ID, nil
}

func (r *Router) executeSwap(ctx context.Context, route *aggregator.Route) (solana.Signature, error) {
	tx, err := r.agg.BuildSwapTransaction(ctx, route, r.signer.PublicKey())
	if err != nil {
		return solana.Signature{}, err
	}
	if err := r.signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("wallet signing: %w", err)
	}
	return r.chain.SubmitAndConfirm(ctx, tx)
}

// sendToSink transfers the swapped tokens to the sink's associated token
// account. The sink address has no known private key, so the transfer is a
// burn in everything but opcode.
func (r *Router) sendToSink(ctx context.Context, mint solana.PublicKey, decimals uint8, amount uint64) (solana.Signature, error) {
	payer := r.signer.PublicKey()
	tokenProgram := r.dir.TokenProgram()
	sink := r.dir.BurnSink()

	sourceATA, err := wallet.AssociatedTokenAddress(payer, tokenProgram, mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("source ata derivation: %w", err)
	}
	sinkATA, err := wallet.AssociatedTokenAddress(sink, tokenProgram, mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sink ata derivation: %w", err)
	}

	instructions := []solana.Instruction{
		createATAIdempotentInstruction(payer, sink, mint, sinkATA, tokenProgram),
		transferCheckedInstruction(tokenProgram, sourceATA, mint, sinkATA, payer, amount, decimals),
	}

	blockhash, err := r.chain.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("blockhash query: %w", err)
	}
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("transaction build: %w", err)
	}
	if err := r.signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("wallet signing: %w", err)
	}
	return r.chain.SubmitAndConfirm(ctx, tx)
}

func (r *Router) reserve(source types.BurnSource, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.buckets[source] < amount {
		return fmt.Errorf("insufficient %s balance: have %v, need %v",
			source, r.buckets[source], amount)
	}
	r.buckets[source] -= amount
	return nil
}

func (r *Router) restore(source types.BurnSource, amount float64) {
	r.mu.Lock()
	r.buckets[source] += amount
	r.mu.Unlock()
}
