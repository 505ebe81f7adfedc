package txkit

import (
	"fmt"

	"github.com/catmcgee/kit-go/signer"
	"github.com/gagliardetto/solana-go"
)

// FeePayer designates who pays the transaction fee. It is a three-variant
// union: a known address, a base58 address string, or a signer-capable
// value whose address is used and whose signature is attached.
type FeePayer struct {
	addr   *solana.PublicKey
	base58 string
	signer signer.TransactionSigner
}

// FeePayerAddress designates a non-signing fee payer by address.
func FeePayerAddress(pk solana.PublicKey) FeePayer {
	return FeePayer{addr: &pk}
}

// FeePayerBase58 designates a non-signing fee payer by base58 address
// string. The string is parsed at prepare time.
func FeePayerBase58(address string) FeePayer {
	return FeePayer{base58: address}
}

// FeePayerSigner designates a fee payer that also signs.
func FeePayerSigner(s signer.TransactionSigner) FeePayer {
	return FeePayer{signer: s}
}

func (fp FeePayer) isZero() bool {
	return fp.addr == nil && fp.base58 == "" && fp.signer == nil
}

// resolvedFeePayer is the outcome of fee payer resolution: an address,
// plus the signer for that address when one was resolved. A nil signer
// means the caller must attach the payer's signature out of band.
type resolvedFeePayer struct {
	address solana.PublicKey
	signer  signer.TransactionSigner
}

// resolveFeePayer applies the fee payer precedence rules:
//
//  1. nothing supplied -> ConfigurationError
//  2. explicit signer fee payer -> its address, it signs
//  3. explicit address distinct from the authority -> non-signing payer
//  4. explicit address equal to the authority's -> the authority signs
//  5. no explicit payer, authority present -> the authority pays and signs
func resolveFeePayer(fp FeePayer, authority signer.TransactionSigner) (resolvedFeePayer, error) {
	if fp.isZero() && authority == nil {
		return resolvedFeePayer{}, &ConfigurationError{
			Reason: "no fee payer resolvable: supply a fee payer or an authority",
		}
	}

	if fp.signer != nil {
		return resolvedFeePayer{address: fp.signer.Address(), signer: fp.signer}, nil
	}

	if fp.addr != nil || fp.base58 != "" {
		addr, err := fp.resolveAddress()
		if err != nil {
			return resolvedFeePayer{}, err
		}
		if authority != nil && addr.Equals(authority.Address()) {
			return resolvedFeePayer{address: addr, signer: authority}, nil
		}
		// A payer distinct from the authority does not sign via this
		// path; the caller attaches its signature out of band.
		return resolvedFeePayer{address: addr}, nil
	}

	if authority != nil {
		return resolvedFeePayer{address: authority.Address(), signer: authority}, nil
	}

	return resolvedFeePayer{}, &ConfigurationError{
		Reason: "authority required to resolve fee payer",
	}
}

func (fp FeePayer) resolveAddress() (solana.PublicKey, error) {
	if fp.addr != nil {
		return *fp.addr, nil
	}
	pk, err := solana.PublicKeyFromBase58(fp.base58)
	if err != nil {
		return solana.PublicKey{}, &ValidationError{
			Reason: fmt.Sprintf("invalid fee payer address %q: %v", fp.base58, err),
		}
	}
	return pk, nil
}
