// internal/engine/engine_test.go
package engine

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/aggregator"
	"github.com/noottools/launch-engine/internal/burn"
	"github.com/noottools/launch-engine/internal/chain"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/noottools/launch-engine/internal/escrow"
	"github.com/noottools/launch-engine/internal/guard"
	"github.com/noottools/launch-engine/internal/minter"
	"github.com/noottools/launch-engine/internal/oracle"
	"github.com/noottools/launch-engine/internal/pool"
	"github.com/noottools/launch-engine/internal/stats"
	"github.com/noottools/launch-engine/internal/storage/memory"
	"github.com/noottools/launch-engine/internal/types"
	"github.com/noottools/launch-engine/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeChain struct{}

func (fakeChain) SubmitAndConfirm(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func (fakeChain) GetAccount(_ context.Context, _ solana.PublicKey) (*chain.AccountInfo, error) {
	return nil, nil
}

func (fakeChain) GetTransaction(_ context.Context, _ solana.Signature) (*chain.TxInfo, error) {
	return nil, nil
}

func (fakeChain) LatestBlockhash(_ context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func (fakeChain) MinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	return 2_000_000, nil
}

type fakeAggregator struct{ amountOut uint64 }

func (f fakeAggregator) Quote(_ context.Context, req aggregator.QuoteRequest) (*aggregator.Route, error) {
	return &aggregator.Route{
		InputMint:    req.InputMint,
		OutputMint:   req.OutputMint,
		AmountIn:     req.AmountIn,
		AmountOut:    f.amountOut,
		MinAmountOut: f.amountOut,
	}, nil
}

func (f fakeAggregator) BuildSwapTransaction(_ context.Context, _ *aggregator.Route, owner solana.PublicKey) (*solana.Transaction, error) {
	ix := solana.NewInstruction(solana.SystemProgramID,
		[]*solana.AccountMeta{{PublicKey: owner, IsWritable: true, IsSigner: true}},
		[]byte{0})
	return solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{},
		solana.TransactionPayer(owner))
}

type fakeVenue struct{ name types.Venue }

func (f fakeVenue) Name() types.Venue { return f.name }

func (f fakeVenue) CreatePool(_ context.Context, _ pool.Deposit) (*pool.VenuePool, error) {
	return &pool.VenuePool{
		PoolAddress: solana.NewWallet().PublicKey(),
		LPMint:      solana.NewWallet().PublicKey(),
		EscrowVault: solana.NewWallet().PublicKey(),
	}, nil
}

type settableOracle struct{ reading oracle.Reading }

func (s *settableOracle) Read(_ context.Context, _ string) (*oracle.Reading, error) {
	r := s.reading
	return &r, nil
}

func newTestEngine(t *testing.T) (*Engine, *settableOracle, *burn.Router) {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := memory.NewStore()
	signer, err := wallet.NewRandomWallet()
	require.NoError(t, err)
	dir := directory.New(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	chainClient := fakeChain{}

	burnRouter := burn.NewRouter(store, fakeAggregator{amountOut: 2_500_000_000}, chainClient, signer, dir, log)
	ledger := escrow.NewLedger(store, log)
	tokenMinter := minter.New(chainClient, signer, store, dir, log)
	poolBuilder := pool.NewBuilder(
		[]pool.Venue{fakeVenue{name: types.VenueRaydium}, fakeVenue{name: types.VenueOrca}},
		store, burnRouter, dir, log)
	statsAgg := stats.NewAggregator(store, log)
	marketOracle := &settableOracle{}

	eng := New(tokenMinter, poolBuilder, ledger, burnRouter, statsAgg, marketOracle, store, log)
	return eng, marketOracle, burnRouter
}

// TestLaunchLifecycle walks the full pipeline: mint, pool + escrow lock,
// condition-gated unlock via oracle sweep, withdrawal, fee burn, stats.
func TestLaunchLifecycle(t *testing.T) {
	eng, marketOracle, burnRouter := newTestEngine(t)
	ctx := context.Background()

	// Mint 1B tokens with the transfer restriction.
	minted, err := eng.MintToken(ctx, minter.MintParams{
		Name:                      "Noot",
		Symbol:                    "NOOT",
		Decimals:                  9,
		TotalSupply:               "1000000000",
		EnableTransferRestriction: true,
	})
	require.NoError(t, err)
	require.True(t, minted.SupplyMinted)

	// While the window is active, transfers touching a pool vault are
	// blocked but wallet-to-wallet moves pass.
	now := time.Now().UTC()
	err = eng.EvaluateTransfer(minted.TokenID, now.Add(5*time.Second),
		solana.SystemProgramID, directory.RaydiumCPMMProgramID)
	assert.ErrorIs(t, err, guard.ErrTransferBlocked)
	err = eng.EvaluateTransfer(minted.TokenID, now.Add(5*time.Second),
		solana.SystemProgramID, solana.SystemProgramID)
	assert.NoError(t, err)
	err = eng.EvaluateTransfer(minted.TokenID, now.Add(time.Minute),
		solana.SystemProgramID, directory.RaydiumCPMMProgramID)
	assert.NoError(t, err)

	// Pool 100M tokens against 50 SOL.
	created, err := eng.CreatePool(ctx, pool.CreateParams{
		TokenID:     minted.TokenID,
		QuoteAsset:  types.QuoteSOL,
		TokenAmount: 100_000_000,
		QuoteAmount: 50,
		AMM:         types.VenueRaydium,
	})
	require.NoError(t, err)
	assert.InDelta(t, 70710.678, created.LPSharesIssued, 0.001)
	assert.InDelta(t, 42426.407, created.LockedLpAmount, 0.001)

	// The 5% migration cut is queued for burning.
	assert.InDelta(t, 2.5, burnRouter.Balance(types.SourceLiquidityMigration), 1e-9)

	poolAddress := created.PoolAddress.String()
	status, err := eng.GetEscrowStatus(ctx, poolAddress)
	require.NoError(t, err)
	assert.False(t, status.IsUnlocked)

	// Early withdrawal attempts are rejected.
	_, err = eng.WithdrawEscrow(ctx, poolAddress, 1)
	assert.ErrorIs(t, err, types.ErrEscrowStillLocked)

	// A sweep below the thresholds keeps the escrow locked.
	marketOracle.reading = oracle.Reading{HoldersCount: 499, VolumeUsd: 30000}
	require.NoError(t, eng.SweepEscrows(ctx))
	status, err = eng.GetEscrowStatus(ctx, poolAddress)
	require.NoError(t, err)
	assert.False(t, status.IsUnlocked)

	// Crossing both thresholds unlocks it.
	marketOracle.reading = oracle.Reading{HoldersCount: 512, VolumeUsd: 31000}
	require.NoError(t, eng.SweepEscrows(ctx))
	status, err = eng.GetEscrowStatus(ctx, poolAddress)
	require.NoError(t, err)
	assert.True(t, status.IsUnlocked)

	// Withdraw part of the unlocked LP.
	status, err = eng.WithdrawEscrow(ctx, poolAddress, 10000)
	require.NoError(t, err)
	assert.InDelta(t, 10000, status.WithdrawnLp, 1e-9)

	// Burn the migration bucket.
	burned, err := eng.ExecuteBurn(ctx, burn.ExecuteParams{
		TokenID: minted.TokenID,
		Source:  types.SourceLiquidityMigration,
		Amount:  2.5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, burned.TokensBurned, 1e-9)
	assert.Zero(t, eng.BurnBalance(types.SourceLiquidityMigration))

	summary, err := eng.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TokensLaunched)
	assert.InDelta(t, 2.5, summary.TotalBurnedTokens, 1e-9)
	assert.Equal(t, 31000.0, summary.TotalVolumeUsd)
	assert.Equal(t, int64(512), summary.TotalHolders)

	burns, err := eng.RecentBurns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, burns, 1)
	assert.Equal(t, types.SourceLiquidityMigration, burns[0].SourceType)
}

func TestSweepTradingFeesThreshold(t *testing.T) {
	eng, _, burnRouter := newTestEngine(t)
	ctx := context.Background()

	minted, err := eng.MintToken(ctx, minter.MintParams{
		Name: "Noot", Symbol: "NOOT", Decimals: 9, TotalSupply: "1000000000",
	})
	require.NoError(t, err)

	eng.AccrueFees(types.SourceTradingFees, 50)

	// Below threshold: nothing happens.
	require.NoError(t, eng.SweepTradingFees(ctx, minted.TokenID, 100))
	assert.Equal(t, 50.0, burnRouter.Balance(types.SourceTradingFees))

	// At threshold: the whole bucket is burned.
	eng.AccrueFees(types.SourceTradingFees, 50)
	require.NoError(t, eng.SweepTradingFees(ctx, minted.TokenID, 100))
	assert.Zero(t, burnRouter.Balance(types.SourceTradingFees))
}

func TestEvaluateTransferWithoutGuard(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	// Tokens minted without the restriction have no guard; everything passes.
	assert.NoError(t, eng.EvaluateTransfer("unknown-token", time.Now(),
		solana.SystemProgramID, directory.RaydiumCPMMProgramID))

	assert.Error(t, eng.DisableGuard("unknown-token"))
}
