// Package txkit builds, signs, and submits Solana transactions. The
// central operation is Preparer.Prepare, which resolves a fee payer,
// injects compute budget instructions, binds a blockhash lifetime, and
// assembles an immutable signable message consumed by Sign, ToWire, and
// Send.
package txkit

import (
	"context"
	"log/slog"
	"time"

	"github.com/catmcgee/kit-go/events"
	"github.com/catmcgee/kit-go/metrics"
	"github.com/catmcgee/kit-go/signer"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Lifetime is a transaction's validity window, anchored to a blockhash.
// Immutable once obtained.
type Lifetime struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// TransactionVersion selects the message format.
type TransactionVersion uint8

const (
	// VersionAuto lets the preparer choose. It resolves to legacy, the
	// conservative default.
	VersionAuto TransactionVersion = iota
	// VersionLegacy is the original message format.
	VersionLegacy
	// VersionV0 is the versioned message format with lookup-table support.
	VersionV0
)

func (v TransactionVersion) String() string {
	switch v {
	case VersionLegacy:
		return "legacy"
	case VersionV0:
		return "v0"
	default:
		return "auto"
	}
}

func (v TransactionVersion) resolve() TransactionVersion {
	if v == VersionAuto {
		return VersionLegacy
	}
	return v
}

// PrepareRequest describes a transaction to prepare. Instructions is the
// only required field; everything else has a resolvable default.
type PrepareRequest struct {
	// Instructions is the ordered, non-empty instruction sequence.
	Instructions []solana.Instruction

	// Authority authorizes the transaction (raw signer or wallet session).
	Authority Authority

	// FeePayer overrides the fee payer; defaults to the authority.
	FeePayer FeePayer

	// Commitment defaults to the process-wide fallback commitment.
	Commitment rpc.CommitmentType

	// ComputeUnitLimit and ComputeUnitPrice request compute budget
	// instructions ahead of Instructions. Ignored when the sequence
	// already carries the corresponding directive.
	ComputeUnitLimit ComputeUnitValue
	ComputeUnitPrice ComputeUnitValue

	// Lifetime pins the validity window; when nil the latest blockhash is
	// fetched at the resolved commitment.
	Lifetime *Lifetime

	// Version selects the message format; VersionAuto resolves to legacy.
	Version TransactionVersion
}

// Prepared is the immutable outcome of Prepare. All fields are resolved;
// downstream operations take it as read-only input. A Prepared value is
// single-use: sign or send it, then drop it.
type Prepared struct {
	commitment       rpc.CommitmentType
	computeUnitLimit *uint32
	computeUnitPrice *uint64
	feePayer         solana.PublicKey
	feePayerSigner   signer.TransactionSigner
	instructions     []solana.Instruction
	lifetime         Lifetime
	tx               *solana.Transaction
	mode             signer.Mode
	version          TransactionVersion
}

// Commitment returns the resolved commitment level.
func (p *Prepared) Commitment() rpc.CommitmentType { return p.commitment }

// ComputeUnitLimit returns the injected unit limit, or nil when none was
// injected.
func (p *Prepared) ComputeUnitLimit() *uint32 {
	if p.computeUnitLimit == nil {
		return nil
	}
	v := *p.computeUnitLimit
	return &v
}

// ComputeUnitPrice returns the injected unit price, or nil when none was
// injected.
func (p *Prepared) ComputeUnitPrice() *uint64 {
	if p.computeUnitPrice == nil {
		return nil
	}
	v := *p.computeUnitPrice
	return &v
}

// FeePayer returns the resolved fee payer address.
func (p *Prepared) FeePayer() solana.PublicKey { return p.feePayer }

// FeePayerSigner returns the signer for the fee payer, or nil when the
// payer's signature must be attached out of band.
func (p *Prepared) FeePayerSigner() signer.TransactionSigner { return p.feePayerSigner }

// Instructions returns a copy of the final instruction sequence (budget
// prefix followed by the original instructions).
func (p *Prepared) Instructions() []solana.Instruction {
	out := make([]solana.Instruction, len(p.instructions))
	copy(out, p.instructions)
	return out
}

// Lifetime returns the bound validity window.
func (p *Prepared) Lifetime() Lifetime { return p.lifetime }

// Mode returns the resolved submission mode.
func (p *Prepared) Mode() signer.Mode { return p.mode }

// Version returns the resolved message version.
func (p *Prepared) Version() TransactionVersion { return p.version }

// Message returns the assembled unsigned transaction. Treat it as
// read-only; Sign and Send operate on their own copies.
func (p *Prepared) Message() *solana.Transaction { return p.tx }

// Preparer orchestrates transaction preparation and submission. It wraps
// the RPC client with domain-specific operations. The publisher and
// metrics are optional; pass nil to disable them.
type Preparer struct {
	rpc       RPCClient
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
	endpoint  string // RPC endpoint identifier for metrics (e.g. "mainnet", rpc host)
}

// NewPreparer creates a new Preparer.
// The endpoint parameter is used for metrics labeling (e.g. "mainnet",
// "devnet", or RPC hostname). If m or publisher is nil, the corresponding
// concern is disabled.
func NewPreparer(rpcClient RPCClient, endpoint string, m *metrics.Metrics, publisher events.Publisher, logger *slog.Logger) *Preparer {
	return &Preparer{
		rpc:       rpcClient,
		logger:    logger,
		metrics:   m,
		publisher: publisher,
		endpoint:  endpoint,
	}
}

// Prepare resolves the request into an immutable Prepared value.
//
// Resolution order: commitment, authority, fee payer, mode, version,
// lifetime (fetching the latest blockhash when the caller supplied none),
// compute budget, then message assembly. Cancellation is honored on
// entry, after the blockhash round trip, and before message assembly.
// RPC errors propagate unmodified.
func (p *Preparer) Prepare(ctx context.Context, req PrepareRequest) (*Prepared, error) {
	if len(req.Instructions) == 0 {
		return nil, &ValidationError{Reason: "instructions must not be empty"}
	}
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Err: err}
	}

	commitment := req.Commitment
	if commitment == "" {
		commitment = DefaultCommitment()
	}

	authority, mode, err := resolveAuthority(req.Authority, commitment)
	if err != nil {
		return nil, err
	}

	feePayer, err := resolveFeePayer(req.FeePayer, authority)
	if err != nil {
		return nil, err
	}

	// Sending requires the broadcasting signer to be the fee payer's
	// signer; anything else falls back to partial signing.
	if mode == signer.ModeSend {
		if _, ok := feePayer.signer.(signer.TransactionSendingSigner); !ok {
			mode = signer.ModePartial
		}
	}

	version := req.Version.resolve()

	lifetime := req.Lifetime
	if lifetime == nil {
		fetched, err := p.fetchLifetime(ctx, commitment)
		if err != nil {
			return nil, err
		}
		lifetime = fetched
	}

	// The blockhash round trip may have taken a while; fail fast rather
	// than proceeding with stale work.
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Err: err}
	}

	// Budget resolution runs against the original sequence, before the
	// prefix is attached.
	limit, err := resolveComputeUnitLimit(req.ComputeUnitLimit, req.Instructions)
	if err != nil {
		return nil, err
	}
	price, err := resolveComputeUnitPrice(req.ComputeUnitPrice, req.Instructions)
	if err != nil {
		return nil, err
	}

	prefix := buildBudgetPrefix(limit, price)
	final := make([]solana.Instruction, 0, len(prefix)+len(req.Instructions))
	final = append(final, prefix...)
	final = append(final, req.Instructions...)

	if p.metrics != nil {
		if limit != nil {
			p.metrics.RecordComputeBudgetInjection("limit")
		}
		if price != nil {
			p.metrics.RecordComputeBudgetInjection("price")
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Err: err}
	}

	tx, err := solana.NewTransaction(
		final,
		lifetime.Blockhash,
		solana.TransactionPayer(feePayer.address),
	)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordTransactionPrepared(string(mode), "error")
		}
		return nil, &ValidationError{Reason: "failed to assemble message: " + err.Error()}
	}
	if version == VersionV0 {
		tx.Message.SetVersion(solana.MessageVersionV0)
	}

	p.logger.DebugContext(ctx, "prepared transaction",
		"fee_payer", feePayer.address.String(),
		"instructions", len(final),
		"mode", string(mode),
		"version", version.String(),
		"commitment", string(commitment),
		"last_valid_block_height", lifetime.LastValidBlockHeight,
	)
	if p.metrics != nil {
		p.metrics.RecordTransactionPrepared(string(mode), "success")
	}

	return &Prepared{
		commitment:       commitment,
		computeUnitLimit: limit,
		computeUnitPrice: price,
		feePayer:         feePayer.address,
		feePayerSigner:   feePayer.signer,
		instructions:     final,
		lifetime:         *lifetime,
		tx:               tx,
		mode:             mode,
		version:          version,
	}, nil
}

// fetchLifetime gets the latest blockhash at the given commitment.
func (p *Preparer) fetchLifetime(ctx context.Context, commitment rpc.CommitmentType) (*Lifetime, error) {
	start := time.Now()
	out, err := p.rpc.GetLatestBlockhash(ctx, commitment)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		p.logger.ErrorContext(ctx, "failed to get latest blockhash",
			"commitment", string(commitment),
			"error", err,
		)
	}
	if p.metrics != nil {
		p.metrics.RecordRPCCall("GetLatestBlockhash", status, p.endpoint, duration)
	}

	if err != nil {
		// Transport errors surface unmodified.
		return nil, err
	}

	p.logger.DebugContext(ctx, "fetched latest blockhash",
		"blockhash", out.Value.Blockhash.String(),
		"last_valid_block_height", out.Value.LastValidBlockHeight,
	)

	return &Lifetime{
		Blockhash:            out.Value.Blockhash,
		LastValidBlockHeight: out.Value.LastValidBlockHeight,
	}, nil
}
