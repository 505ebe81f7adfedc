package txkit

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/compute-budget"
)

// ComputeUnitValue is an optional compute budget value (unit limit or
// unit price). The zero value means "not requested". Fractional inputs
// are floored at construction, never carried internally.
type ComputeUnitValue struct {
	set     bool
	invalid bool
	value   uint64
}

// ComputeUnits requests an exact compute budget value.
func ComputeUnits(v uint64) ComputeUnitValue {
	return ComputeUnitValue{set: true, value: v}
}

// ComputeUnitsFromFloat requests a compute budget value from a fractional
// number. The value is floored, not rounded: requesting 1.9 units yields 1.
// NaN, infinite, and negative inputs fail validation at prepare time.
func ComputeUnitsFromFloat(f float64) ComputeUnitValue {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return ComputeUnitValue{set: true, invalid: true}
	}
	return ComputeUnitValue{set: true, value: uint64(math.Floor(f))}
}

// IsSet reports whether a value was requested.
func (v ComputeUnitValue) IsSet() bool { return v.set }

// resolveComputeUnitLimit returns the unit limit to inject, or nil when
// the caller did not request one or the sequence already carries a
// SetComputeUnitLimit directive. Explicit caller-supplied instructions
// always win over convenience injection.
func resolveComputeUnitLimit(requested ComputeUnitValue, instructions []solana.Instruction) (*uint32, error) {
	if !requested.set {
		return nil, nil
	}
	if requested.invalid {
		return nil, &ValidationError{Reason: "compute unit limit must be a non-negative finite number"}
	}
	if hasComputeUnitLimitInstruction(instructions) {
		return nil, nil
	}
	if requested.value > math.MaxUint32 {
		return nil, &ValidationError{Reason: fmt.Sprintf("compute unit limit %d exceeds maximum %d", requested.value, uint64(math.MaxUint32))}
	}
	limit := uint32(requested.value)
	return &limit, nil
}

// resolveComputeUnitPrice is the price counterpart of
// resolveComputeUnitLimit. Prices are micro-lamports per compute unit.
func resolveComputeUnitPrice(requested ComputeUnitValue, instructions []solana.Instruction) (*uint64, error) {
	if !requested.set {
		return nil, nil
	}
	if requested.invalid {
		return nil, &ValidationError{Reason: "compute unit price must be a non-negative finite number"}
	}
	if hasComputeUnitPriceInstruction(instructions) {
		return nil, nil
	}
	price := requested.value
	return &price, nil
}

// buildBudgetPrefix builds the compute budget instructions injected ahead
// of the caller's instructions. The limit directive always precedes the
// price directive; the order is significant for deterministic message
// bytes.
func buildBudgetPrefix(limit *uint32, price *uint64) []solana.Instruction {
	prefix := make([]solana.Instruction, 0, 2)
	if limit != nil {
		prefix = append(prefix, computebudget.NewSetComputeUnitLimitInstruction(*limit).Build())
	}
	if price != nil {
		prefix = append(prefix, computebudget.NewSetComputeUnitPriceInstruction(*price).Build())
	}
	return prefix
}
