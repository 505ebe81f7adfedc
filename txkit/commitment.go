package txkit

import (
	"sync/atomic"

	"github.com/gagliardetto/solana-go/rpc"
)

// fallbackCommitment is the process-wide commitment used when a request
// does not specify one. Read once per Prepare call.
var fallbackCommitment atomic.Value

func init() {
	fallbackCommitment.Store(rpc.CommitmentConfirmed)
}

// DefaultCommitment returns the process-wide fallback commitment level.
func DefaultCommitment() rpc.CommitmentType {
	return fallbackCommitment.Load().(rpc.CommitmentType)
}

// SetDefaultCommitment changes the process-wide fallback commitment level.
// Empty values are ignored.
func SetDefaultCommitment(c rpc.CommitmentType) {
	if c == "" {
		return
	}
	fallbackCommitment.Store(c)
}
