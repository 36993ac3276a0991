// internal/minter/minter.go
package minter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/noottools/launch-engine/internal/chain"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/noottools/launch-engine/internal/guard"
	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/storage/models"
	"github.com/noottools/launch-engine/internal/types"
	"github.com/noottools/launch-engine/internal/wallet"
	"go.uber.org/zap"
)

// ErrMintFinalized is returned when a creation-time extension is requested
// for an asset whose mint parameters are already finalized on chain.
var ErrMintFinalized = errors.New("mint is finalized, extensions can no longer be attached")

// MetadataRegistrar registers off-chain metadata for a freshly finalized
// asset. Registration failures never fail the mint.
type MetadataRegistrar interface {
	Register(ctx context.Context, mint solana.PublicKey, name, symbol string) error
}

type noopMetadata struct{}

func (noopMetadata) Register(context.Context, solana.PublicKey, string, string) error { return nil }

// MintParams describe the asset to create.
type MintParams struct {
	Name                      string
	Symbol                    string
	Decimals                  int
	TotalSupply               string // positive integer string, whole tokens
	EnableTransferRestriction bool
}

// MintResult is the outcome of Mint. When SupplyMinted is false the asset
// exists on chain but the initial supply is still pending; recover with
// RetryInitialSupply, never by minting the asset again.
type MintResult struct {
	TokenID         string
	MintAddress     solana.PublicKey
	ConfirmationRef string
	SupplyMinted    bool
}

// Minter creates new fungible assets with an optional transfer-restriction
// extension and mints the initial supply to the creator.
type Minter struct {
	chain    chain.Client
	signer   wallet.Signer
	store    storage.Store
	dir      *directory.Directory
	metadata MetadataRegistrar
	logger   *zap.Logger
}

func New(chainClient chain.Client, signer wallet.Signer, store storage.Store, dir *directory.Directory, logger *zap.Logger) *Minter {
	return &Minter{
		chain:    chainClient,
		signer:   signer,
		store:    store,
		dir:      dir,
		metadata: noopMetadata{},
		logger:   logger.Named("minter"),
	}
}

// SetMetadataRegistrar overrides the default no-op registrar.
func (m *Minter) SetMetadataRegistrar(reg MetadataRegistrar) {
	if reg != nil {
		m.metadata = reg
	}
}

// Mint allocates a new asset, attaches the restriction extension before
// finalization when requested, finalizes parameters and mints the initial
// supply to the creator. The asset is irreversibly created once the
// finalize transaction confirms, even if the supply step fails afterwards.
func (m *Minter) Mint(ctx context.Context, params MintParams) (*MintResult, error) {
	rawSupply, err := validateParams(params)
	if err != nil {
		return nil, &types.MintError{Stage: "validate", Err: err}
	}

	mintKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, &types.MintError{Stage: "keygen", Err: err}
	}
	mint := mintKey.PublicKey()

	token := &models.Token{
		ID:          uuid.New().String(),
		Name:        params.Name,
		Symbol:      params.Symbol,
		Decimals:    uint8(params.Decimals),
		TotalSupply: params.TotalSupply,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.store.CreateToken(ctx, token); err != nil {
		return nil, &types.MintError{Stage: "record", Err: err}
	}

	signature, err := m.finalizeAsset(ctx, mint, mintKey, params)
	if err != nil {
		// Nothing confirmed on chain; the local row keeps a null mint
		// address and is never reused.
		return nil, &types.MintError{Stage: "finalize", Err: err}
	}

	result := &MintResult{
		TokenID:         token.ID,
		MintAddress:     mint,
		ConfirmationRef: signature.String(),
	}

	if err := m.store.SetTokenMintAddress(ctx, token.ID, mint.String()); err != nil {
		// The asset is live on chain at this point. Hand the caller the
		// confirmed mint address so the row can be reconciled by hand.
		m.logger.Error("mint address record failed after on-chain finalize",
			zap.String("token_id", token.ID),
			zap.String("mint", mint.String()),
			zap.String("signature", signature.String()),
			zap.Error(err))
		return result, &types.MintError{Stage: "record", Err: err}
	}
	m.dir.RegisterToken(token.ID, mint)

	if err := m.metadata.Register(ctx, mint, params.Name, params.Symbol); err != nil {
		m.logger.Warn("metadata registration failed",
			zap.String("token_id", token.ID), zap.Error(err))
	}

	m.logger.Info("asset finalized",
		zap.String("token_id", token.ID),
		zap.String("mint", mint.String()),
		zap.String("signature", signature.String()))

	if err := m.mintInitialSupply(ctx, mint, rawSupply); err != nil {
		// Distinct recoverable state: asset exists, supply pending.
		m.logger.Warn("initial supply mint failed, asset already finalized",
			zap.String("token_id", token.ID),
			zap.Error(err))
		return result, &types.MintError{Stage: "initial-supply", Err: err}
	}

	if err := m.store.SetTokenSupplyMinted(ctx, token.ID); err != nil {
		return result, &types.MintError{Stage: "record", Err: err}
	}
	result.SupplyMinted = true
	return result, nil
}

// AttachTransferRestriction reports whether the restriction extension can
// still be attached to the token. It can't: the extension must be requested
// at mint time, before initialize-mint runs. A finalized token returns
// ErrMintFinalized; an unfinalized row never got a mint to attach to.
func (m *Minter) AttachTransferRestriction(ctx context.Context, tokenID string) error {
	token, err := m.store.GetToken(ctx, tokenID)
	if err != nil {
		return &types.MintError{Stage: "record", Err: err}
	}
	if token.MintAddress != "" {
		return ErrMintFinalized
	}
	return &types.MintError{Stage: "attach-extension",
		Err: fmt.Errorf("token %s was never finalized, relaunch with the restriction enabled", tokenID)}
}

// RetryInitialSupply re-attempts minting the initial supply to an already
// finalized asset. It never re-finalizes.
func (m *Minter) RetryInitialSupply(ctx context.Context, tokenID string) (*MintResult, error) {
	token, err := m.store.GetToken(ctx, tokenID)
	if err != nil {
		return nil, &types.MintError{Stage: "record", Err: err}
	}
	if token.MintAddress == "" {
		return nil, &types.MintError{Stage: "retry-supply",
			Err: fmt.Errorf("token %s was never finalized", tokenID)}
	}
	if token.SupplyMinted {
		return nil, &types.MintError{Stage: "retry-supply",
			Err: fmt.Errorf("token %s supply already minted", tokenID)}
	}

	mint, err := solana.PublicKeyFromBase58(token.MintAddress)
	if err != nil {
		return nil, &types.MintError{Stage: "retry-supply", Err: err}
	}
	rawSupply, err := scaleSupply(token.TotalSupply, token.Decimals)
	if err != nil {
		return nil, &types.MintError{Stage: "retry-supply", Err: err}
	}

	if err := m.mintInitialSupply(ctx, mint, rawSupply); err != nil {
		return nil, &types.MintError{Stage: "initial-supply", Err: err}
	}
	if err := m.store.SetTokenSupplyMinted(ctx, tokenID); err != nil {
		return nil, &types.MintError{Stage: "record", Err: err}
	}
	return &MintResult{
		TokenID:      tokenID,
		MintAddress:  mint,
		SupplyMinted: true,
	}, nil
}

// finalizeAsset submits the create-account / attach-extension /
// initialize-mint sequence as one transaction. The extension must be
// attached before initialize-mint; afterwards the token program rejects it.
func (m *Minter) finalizeAsset(ctx context.Context, mint solana.PublicKey, mintKey solana.PrivateKey, params MintParams) (solana.Signature, error) {
	payer := m.signer.PublicKey()
	tokenProgram := m.dir.TokenProgram()

	space := uint64(mintAccountSize)
	if params.EnableTransferRestriction {
		space = mintAccountSizeWithHook
	}
	rent, err := m.chain.MinimumBalanceForRentExemption(ctx, space)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("rent exemption query: %w", err)
	}

	instructions := []solana.Instruction{
		createAccountInstruction(payer, mint, rent, space, tokenProgram),
	}

	if params.EnableTransferRestriction {
		hookProgram := m.dir.HookProgram()
		instructions = append(instructions,
			guard.InitializeHookInstruction(mint, payer, hookProgram, tokenProgram))
		stateIx, err := guard.InitializeStateInstruction(
			mint, payer, hookProgram, time.Now().Unix(), guard.WindowSeconds)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("hook state instruction: %w", err)
		}
		instructions = append(instructions, stateIx)
	}

	instructions = append(instructions,
		initializeMintInstruction(mint, uint8(params.Decimals), payer, tokenProgram))

	tx, err := m.buildTransaction(ctx, instructions, payer)
	if err != nil {
		return solana.Signature{}, err
	}
	if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(mint) {
			return &mintKey
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("mint key signing: %w", err)
	}
	if err := m.signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("wallet signing: %w", err)
	}

	return m.chain.SubmitAndConfirm(ctx, tx)
}

func (m *Minter) mintInitialSupply(ctx context.Context, mint solana.PublicKey, rawSupply uint64) error {
	payer := m.signer.PublicKey()
	tokenProgram := m.dir.TokenProgram()

	ata, err := wallet.AssociatedTokenAddress(payer, tokenProgram, mint)
	if err != nil {
		return fmt.Errorf("ata derivation: %w", err)
	}

	instructions := []solana.Instruction{
		createATAIdempotentInstruction(payer, payer, ata, mint, tokenProgram),
		mintToInstruction(mint, ata, payer, rawSupply, tokenProgram),
	}

	tx, err := m.buildTransaction(ctx, instructions, payer)
	if err != nil {
		return err
	}
	if err := m.signer.SignTransaction(tx); err != nil {
		return fmt.Errorf("wallet signing: %w", err)
	}

	_, err = m.chain.SubmitAndConfirm(ctx, tx)
	return err
}

func (m *Minter) buildTransaction(ctx context.Context, instructions []solana.Instruction, payer solana.PublicKey) (*solana.Transaction, error) {
	blockhash, err := m.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("blockhash query: %w", err)
	}
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("transaction build: %w", err)
	}
	return tx, nil
}

func validateParams(params MintParams) (uint64, error) {
	if strings.TrimSpace(params.Name) == "" {
		return 0, types.NewValidationError("name", "must not be empty")
	}
	if len(params.Name) > 100 {
		return 0, types.NewValidationError("name", "too long")
	}
	symbol := strings.TrimSpace(params.Symbol)
	if symbol == "" || len(symbol) > 20 {
		return 0, types.NewValidationError("symbol", "must be 1-20 characters")
	}
	if params.Decimals < 0 || params.Decimals > 255 {
		return 0, types.NewValidationError("decimals", "must be in [0,255]")
	}
	return scaleSupply(params.TotalSupply, uint8(params.Decimals))
}

// scaleSupply parses a whole-token supply string and scales it by
// 10^decimals into base units.
func scaleSupply(totalSupply string, decimals uint8) (uint64, error) {
	supply, ok := new(big.Int).SetString(strings.TrimSpace(totalSupply), 10)
	if !ok {
		return 0, types.NewValidationError("totalSupply", "not an integer")
	}
	if supply.Sign() <= 0 {
		return 0, types.NewValidationError("totalSupply", "must be positive")
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	raw := new(big.Int).Mul(supply, scale)
	if !raw.IsUint64() {
		return 0, types.NewValidationError("totalSupply", "exceeds representable base units")
	}
	return raw.Uint64(), nil
}
