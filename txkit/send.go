package txkit

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/catmcgee/kit-go/events"
	"github.com/catmcgee/kit-go/signer"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SignOptions carries per-call signing constraints.
type SignOptions struct {
	// MinContextSlot is forwarded to the signers; zero means no constraint.
	MinContextSlot uint64

	// AdditionalSigners are applied after the fee payer's signer, e.g. the
	// out-of-band payer of a sponsored transaction.
	AdditionalSigners []signer.TransactionSigner
}

// SendOptions carries per-call submission options.
type SendOptions struct {
	// Commitment overrides the prepared transaction's commitment.
	Commitment rpc.CommitmentType

	// MinContextSlot is forwarded to the signers.
	MinContextSlot uint64

	// AdditionalSigners are applied when partial-signing before broadcast.
	AdditionalSigners []signer.TransactionSigner

	// MaxRetries is passed through verbatim to the RPC transport; the
	// preparer itself never retries.
	MaxRetries *uint64

	// SkipPreflight disables the preflight simulation on submission.
	SkipPreflight bool
}

// Sign produces a signed copy of the prepared message. The prepared value
// itself is never mutated. The fee payer's signer (when resolved) signs
// first, then any additional signers.
func (p *Preparer) Sign(ctx context.Context, prepared *Prepared, opts *SignOptions) (*solana.Transaction, error) {
	if opts == nil {
		opts = &SignOptions{}
	}
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Err: err}
	}

	if prepared.feePayerSigner == nil && len(opts.AdditionalSigners) == 0 {
		return nil, &ConfigurationError{
			Reason: "no signer available: the fee payer resolved without one and no additional signers were supplied",
		}
	}

	tx, err := cloneTransaction(prepared.tx)
	if err != nil {
		return nil, err
	}

	sOpts := signer.SignOptions{MinContextSlot: opts.MinContextSlot}
	if prepared.feePayerSigner != nil {
		if err := prepared.feePayerSigner.SignTransaction(ctx, tx, sOpts); err != nil {
			return nil, err
		}
	}
	if err := signer.Apply(ctx, tx, sOpts, opts.AdditionalSigners...); err != nil {
		return nil, err
	}

	return tx, nil
}

// ToWire signs the prepared message and returns the base64-encoded
// serialized transaction, the form accepted by sendTransaction.
func (p *Preparer) ToWire(ctx context.Context, prepared *Prepared, opts *SignOptions) (string, error) {
	tx, err := p.Sign(ctx, prepared, opts)
	if err != nil {
		return "", err
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize signed transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Send submits the prepared transaction and returns its signature.
//
// ModeSend delegates to the fee payer's sending signer, which signs and
// broadcasts in a single round trip. ModePartial signs locally, encodes
// to wire format, and submits through the RPC transport.
func (p *Preparer) Send(ctx context.Context, prepared *Prepared, opts *SendOptions) (solana.Signature, error) {
	if opts == nil {
		opts = &SendOptions{}
	}
	commitment := opts.Commitment
	if commitment == "" {
		commitment = prepared.commitment
	}

	start := time.Now()
	var sig solana.Signature
	var err error

	if prepared.mode == signer.ModeSend {
		sig, err = p.sendViaSigner(ctx, prepared, opts)
	} else {
		sig, err = p.sendViaRPC(ctx, prepared, commitment, opts)
	}

	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.RecordTransactionSent(string(prepared.mode), status, duration)
	}
	if err != nil {
		return solana.Signature{}, err
	}

	p.logger.InfoContext(ctx, "transaction submitted",
		"signature", sig.String(),
		"fee_payer", prepared.feePayer.String(),
		"mode", string(prepared.mode),
		"commitment", string(commitment),
	)

	p.publishSubmission(ctx, prepared, sig, commitment)
	return sig, nil
}

// sendViaSigner is the ModeSend path: the resolved sending signer handles
// both signing and broadcast.
func (p *Preparer) sendViaSigner(ctx context.Context, prepared *Prepared, opts *SendOptions) (solana.Signature, error) {
	sending, ok := prepared.feePayerSigner.(signer.TransactionSendingSigner)
	if !ok {
		// Mode resolution guarantees this; anything else is a caller
		// constructing Prepared values by hand.
		return solana.Signature{}, &ConfigurationError{
			Reason: "send mode requires a transaction-sending signer for the fee payer",
		}
	}

	tx, err := cloneTransaction(prepared.tx)
	if err != nil {
		return solana.Signature{}, err
	}

	return sending.SignAndSend(ctx, tx, signer.SignOptions{MinContextSlot: opts.MinContextSlot})
}

// sendViaRPC is the ModePartial path: sign locally, wire-encode, submit.
func (p *Preparer) sendViaRPC(ctx context.Context, prepared *Prepared, commitment rpc.CommitmentType, opts *SendOptions) (solana.Signature, error) {
	wire, err := p.ToWire(ctx, prepared, &SignOptions{
		MinContextSlot:    opts.MinContextSlot,
		AdditionalSigners: opts.AdditionalSigners,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	txOpts := rpc.TransactionOpts{
		Encoding:            solana.EncodingBase64,
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: commitment,
	}
	if opts.MaxRetries != nil {
		retries := normalizeMaxRetries(*opts.MaxRetries)
		txOpts.MaxRetries = &retries
	}
	if opts.MinContextSlot != 0 {
		slot := opts.MinContextSlot
		txOpts.MinContextSlot = &slot
	}

	rpcStart := time.Now()
	sig, err := p.rpc.SendEncodedTransactionWithOpts(ctx, wire, txOpts)
	duration := time.Since(rpcStart).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		p.logger.ErrorContext(ctx, "failed to send transaction",
			"fee_payer", prepared.feePayer.String(),
			"error", err,
		)
	}
	if p.metrics != nil {
		p.metrics.RecordRPCCall("SendTransaction", status, p.endpoint, duration)
	}

	if err != nil {
		// Transport errors surface unmodified.
		return solana.Signature{}, err
	}
	return sig, nil
}

// publishSubmission emits a submission event. Publishing is best effort:
// failures are logged, never surfaced to the caller.
func (p *Preparer) publishSubmission(ctx context.Context, prepared *Prepared, sig solana.Signature, commitment rpc.CommitmentType) {
	if p.publisher == nil {
		return
	}

	event := &events.SubmissionEvent{
		Signature:   sig.String(),
		FeePayer:    prepared.feePayer.String(),
		Mode:        string(prepared.mode),
		Commitment:  string(commitment),
		SubmittedAt: time.Now().UTC(),
		PublishedAt: time.Now().UTC(),
	}

	status := "success"
	if err := p.publisher.PublishSubmission(ctx, event); err != nil {
		status = "error"
		p.logger.ErrorContext(ctx, "failed to publish submission event",
			"signature", sig.String(),
			"error", err,
		)
	}
	if p.metrics != nil {
		p.metrics.RecordEventPublished(status)
	}
}

// normalizeMaxRetries converts the caller-facing uint64 retry count to the
// uint the RPC layer expects, clamping on platforms where uint is 32 bits.
func normalizeMaxRetries(n uint64) uint {
	if n > math.MaxUint {
		return math.MaxUint
	}
	return uint(n)
}

// cloneTransaction deep-copies a transaction by round-tripping its
// message through the wire encoding. Keeps Prepared values immutable
// while signers mutate the copy.
func cloneTransaction(tx *solana.Transaction) (*solana.Transaction, error) {
	data, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}
	var msg solana.Message
	if err := msg.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("failed to decode message copy: %w", err)
	}
	return &solana.Transaction{Message: msg}, nil
}
