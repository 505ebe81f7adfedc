package txkit

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/compute-budget"
)

// Compute budget program instruction discriminators (first data byte).
const (
	opSetComputeUnitLimit uint8 = 2
	opSetComputeUnitPrice uint8 = 3
)

// hasComputeUnitLimitInstruction reports whether the sequence already
// contains a SetComputeUnitLimit directive. The network misbehaves on
// duplicate compute budget directives, so the preparer never injects a
// second one.
func hasComputeUnitLimitInstruction(instructions []solana.Instruction) bool {
	return hasComputeBudgetInstruction(instructions, opSetComputeUnitLimit)
}

// hasComputeUnitPriceInstruction reports whether the sequence already
// contains a SetComputeUnitPrice directive.
func hasComputeUnitPriceInstruction(instructions []solana.Instruction) bool {
	return hasComputeBudgetInstruction(instructions, opSetComputeUnitPrice)
}

func hasComputeBudgetInstruction(instructions []solana.Instruction, op uint8) bool {
	for _, ix := range instructions {
		if !ix.ProgramID().Equals(computebudget.ProgramID) {
			continue
		}
		data, err := ix.Data()
		if err != nil || len(data) == 0 {
			continue
		}
		if data[0] == op {
			return true
		}
	}
	return false
}
