package txkit

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
)

func testTransferInstruction() solana.Instruction {
	from := solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
	to := solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	return system.NewTransferInstruction(1_000, from, to).Build()
}

func TestHasComputeUnitLimitInstruction(t *testing.T) {
	transfer := testTransferInstruction()
	limit := computebudget.NewSetComputeUnitLimitInstruction(200_000).Build()
	price := computebudget.NewSetComputeUnitPriceInstruction(1).Build()

	assert.False(t, hasComputeUnitLimitInstruction([]solana.Instruction{transfer}))
	assert.False(t, hasComputeUnitLimitInstruction([]solana.Instruction{transfer, price}))
	assert.True(t, hasComputeUnitLimitInstruction([]solana.Instruction{limit, transfer}))
	assert.True(t, hasComputeUnitLimitInstruction([]solana.Instruction{transfer, limit}))
}

func TestHasComputeUnitPriceInstruction(t *testing.T) {
	transfer := testTransferInstruction()
	limit := computebudget.NewSetComputeUnitLimitInstruction(200_000).Build()
	price := computebudget.NewSetComputeUnitPriceInstruction(1).Build()

	assert.False(t, hasComputeUnitPriceInstruction([]solana.Instruction{transfer}))
	assert.False(t, hasComputeUnitPriceInstruction([]solana.Instruction{transfer, limit}))
	assert.True(t, hasComputeUnitPriceInstruction([]solana.Instruction{price, transfer}))
}

func TestHasComputeBudgetInstruction_EmptySequence(t *testing.T) {
	assert.False(t, hasComputeUnitLimitInstruction(nil))
	assert.False(t, hasComputeUnitPriceInstruction(nil))
}
