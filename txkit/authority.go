package txkit

import (
	"github.com/catmcgee/kit-go/signer"
	"github.com/gagliardetto/solana-go/rpc"
)

// Authority identifies who authorizes the transaction. It is a two-variant
// union: a raw signer, or a wallet session resolved into a signer at
// prepare time. The zero value means no authority.
type Authority struct {
	signer  signer.TransactionSigner
	session signer.WalletSession
}

// AuthoritySigner supplies a raw signer as the authority.
func AuthoritySigner(s signer.TransactionSigner) Authority {
	return Authority{signer: s}
}

// AuthoritySession supplies a wallet session as the authority.
func AuthoritySession(session signer.WalletSession) Authority {
	return Authority{session: session}
}

func (a Authority) isZero() bool {
	return a.signer == nil && a.session == nil
}

// resolveAuthority turns the authority union into a concrete signer and a
// tentative submission mode. No authority yields a nil signer and
// ModePartial.
func resolveAuthority(a Authority, commitment rpc.CommitmentType) (signer.TransactionSigner, signer.Mode, error) {
	switch {
	case a.session != nil:
		return signer.FromWalletSession(a.session, commitment)
	case a.signer != nil:
		return a.signer, signer.ResolveMode(a.signer), nil
	default:
		return nil, signer.ModePartial, nil
	}
}
