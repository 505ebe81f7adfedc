package signer

import (
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// WalletSession is an active connection to a wallet connector. The
// connector layer (discovery, approval UI, transport) lives outside this
// module; a session only has to hand back a signer for the requested
// commitment level.
type WalletSession interface {
	// TransactionSigner returns a signer bound to this session plus the
	// submission mode the wallet supports. Wallets with a combined
	// approve-and-submit flow return ModeSend.
	TransactionSigner(commitment rpc.CommitmentType) (TransactionSigner, Mode, error)
}

// FromWalletSession resolves a wallet session into a concrete signer and
// its submission mode.
func FromWalletSession(session WalletSession, commitment rpc.CommitmentType) (TransactionSigner, Mode, error) {
	s, mode, err := session.TransactionSigner(commitment)
	if err != nil {
		return nil, ModePartial, fmt.Errorf("failed to resolve wallet session signer: %w", err)
	}
	if s == nil {
		return nil, ModePartial, fmt.Errorf("wallet session returned no signer")
	}
	return s, mode, nil
}
