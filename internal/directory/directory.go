// internal/directory/directory.go
package directory

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/types"
)

// Well-known mainnet addresses.
var (
	// WrappedSOLMint is the wrapped native coin mint.
	WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	// USDCMint is the canonical stable quote asset.
	USDCMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	// Token2022ProgramID is the token program supporting creation-time extensions.
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	// BurnSinkAddress is the incinerator: no known private key, assets sent
	// here are permanently unspendable.
	BurnSinkAddress = solana.MustPublicKeyFromBase58("1nc1nerator11111111111111111111111111111111")
	// RaydiumCPMMProgramID is the venue program for raydium pools.
	RaydiumCPMMProgramID = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	// OrcaWhirlpoolProgramID is the venue program for orca pools.
	OrcaWhirlpoolProgramID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
)

// Directory resolves logical asset identifiers to chain addresses. Launched
// tokens are registered at mint time; everything else is static.
type Directory struct {
	mu            sync.RWMutex
	tokens        map[string]solana.PublicKey
	hookProgram   solana.PublicKey
	escrowProgram solana.PublicKey
}

func New(hookProgram, escrowProgram solana.PublicKey) *Directory {
	return &Directory{
		tokens:        make(map[string]solana.PublicKey),
		hookProgram:   hookProgram,
		escrowProgram: escrowProgram,
	}
}

// RegisterToken records the mint address for a launched token id.
func (d *Directory) RegisterToken(tokenID string, mint solana.PublicKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens[tokenID] = mint
}

// TokenMint resolves a launched token id to its mint address.
func (d *Directory) TokenMint(tokenID string) (solana.PublicKey, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	mint, ok := d.tokens[tokenID]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("unknown token id %q", tokenID)
	}
	return mint, nil
}

// QuoteMint resolves a quote asset to its mint address.
func (d *Directory) QuoteMint(quote types.QuoteAsset) (solana.PublicKey, error) {
	switch quote {
	case types.QuoteSOL:
		return WrappedSOLMint, nil
	case types.QuoteUSDC:
		return USDCMint, nil
	default:
		return solana.PublicKey{}, fmt.Errorf("unknown quote asset %q", quote)
	}
}

// QuoteDecimals reports the mint decimals of a quote asset.
func (d *Directory) QuoteDecimals(quote types.QuoteAsset) (uint8, error) {
	switch quote {
	case types.QuoteSOL:
		return 9, nil
	case types.QuoteUSDC:
		return 6, nil
	default:
		return 0, fmt.Errorf("unknown quote asset %q", quote)
	}
}

// VenueProgram resolves an AMM venue to its on-chain program.
func (d *Directory) VenueProgram(venue types.Venue) (solana.PublicKey, error) {
	switch venue {
	case types.VenueRaydium:
		return RaydiumCPMMProgramID, nil
	case types.VenueOrca:
		return OrcaWhirlpoolProgramID, nil
	default:
		return solana.PublicKey{}, fmt.Errorf("unknown venue %q", venue)
	}
}

// BurnSink returns the unspendable burn address.
func (d *Directory) BurnSink() solana.PublicKey {
	return BurnSinkAddress
}

// TokenProgram returns the token program used for launched assets.
func (d *Directory) TokenProgram() solana.PublicKey {
	return Token2022ProgramID
}

// HookProgram returns the transfer-restriction hook program.
func (d *Directory) HookProgram() solana.PublicKey {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hookProgram
}

// EscrowProgram returns the LP escrow program.
func (d *Directory) EscrowProgram() solana.PublicKey {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.escrowProgram
}
