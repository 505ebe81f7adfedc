// Package signer defines the signing capabilities consumed by the
// transaction preparation pipeline. Implementations range from local
// keypairs to wallet connectors that can broadcast on the caller's behalf.
package signer

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Mode describes how a prepared transaction reaches the network.
type Mode string

const (
	// ModePartial means the signer only produces signatures; the caller
	// must broadcast the serialized transaction separately.
	ModePartial Mode = "partial"

	// ModeSend means the signer broadcasts the transaction itself as part
	// of the signing step (e.g. wallet connectors with a combined
	// approve-and-submit flow).
	ModeSend Mode = "send"
)

// SignOptions carries constraints forwarded to signing routines.
type SignOptions struct {
	// MinContextSlot is the minimum slot the signer's view of the chain
	// must have reached before signing. Zero means no constraint.
	MinContextSlot uint64
}

// TransactionSigner can add its signature to an assembled transaction.
// Implementations must honor context cancellation.
type TransactionSigner interface {
	// Address returns the public key this signer signs for.
	Address() solana.PublicKey

	// SignTransaction adds this signer's signature to tx in place.
	// Signatures already present for other keys are left untouched.
	SignTransaction(ctx context.Context, tx *solana.Transaction, opts SignOptions) error
}

// TransactionSendingSigner is a TransactionSigner that can atomically
// sign and broadcast in a single step. Resolving to this capability is
// what upgrades a prepared transaction to ModeSend.
type TransactionSendingSigner interface {
	TransactionSigner

	// SignAndSend signs tx and submits it to the network, returning the
	// transaction signature.
	SignAndSend(ctx context.Context, tx *solana.Transaction, opts SignOptions) (solana.Signature, error)
}

// ResolveMode inspects a signer's capabilities and returns the submission
// mode it supports. A nil signer resolves to ModePartial.
func ResolveMode(s TransactionSigner) Mode {
	if _, ok := s.(TransactionSendingSigner); ok {
		return ModeSend
	}
	return ModePartial
}

// Apply runs each signer over tx in order. It stops at the first failure.
func Apply(ctx context.Context, tx *solana.Transaction, opts SignOptions, signers ...TransactionSigner) error {
	for _, s := range signers {
		if err := s.SignTransaction(ctx, tx, opts); err != nil {
			return err
		}
	}
	return nil
}
