package signer

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Keypair is a TransactionSigner backed by a local ed25519 private key.
// It signs only; broadcasting is left to the caller, so it always
// resolves to ModePartial.
type Keypair struct {
	key solana.PrivateKey
}

// NewKeypair wraps a private key in a signer.
func NewKeypair(key solana.PrivateKey) *Keypair {
	return &Keypair{key: key}
}

// KeypairFromFile loads a solana-keygen JSON keypair file.
func KeypairFromFile(path string) (*Keypair, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair from %s: %w", path, err)
	}
	return &Keypair{key: key}, nil
}

// Address returns the keypair's public key.
func (k *Keypair) Address() solana.PublicKey {
	return k.key.PublicKey()
}

// SignTransaction adds this keypair's signature to tx. Signature slots for
// other required signers are left zeroed for out-of-band signing.
func (k *Keypair) SignTransaction(ctx context.Context, tx *solana.Transaction, opts SignOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := tx.PartialSign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(k.key.PublicKey()) {
			key := k.key
			return &key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}
