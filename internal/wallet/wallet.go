// internal/wallet/wallet.go
package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Signer is the signing capability the engine consumes. The engine never
// holds private key material beyond this seam.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}

// Wallet is a local keypair-backed Signer.
type Wallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewWallet creates a wallet from a base58-encoded private key.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	privateKey := solana.PrivateKey(privateKeyBytes)
	return &Wallet{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// NewRandomWallet creates a throwaway wallet. Used in tests.
func NewRandomWallet() (*Wallet, error) {
	privateKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	return &Wallet{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

func (w *Wallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// SignTransaction signs tx for the wallet's own key, leaving other required
// signatures (e.g. an ephemeral mint keypair) to PartialSign by the caller.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.publicKey) {
			return &w.privateKey
		}
		return nil
	})
	return err
}

// AssociatedTokenAddress derives the ATA for owner and mint with the owning
// token program in the seeds. Extension mints live under token-2022, whose
// ATAs derive differently from legacy token mints, so the program must
// always be part of the derivation.
func AssociatedTokenAddress(owner, tokenProgram, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{owner.Bytes(), tokenProgram.Bytes(), mint.Bytes()},
		solana.SPLAssociatedTokenAccountProgramID)
	return addr, err
}

// String returns the wallet's public key.
func (w *Wallet) String() string {
	return w.publicKey.String()
}

var _ Signer = (*Wallet)(nil)
