package txkit

import (
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveComputeUnitLimit_NotRequested(t *testing.T) {
	limit, err := resolveComputeUnitLimit(ComputeUnitValue{}, []solana.Instruction{testTransferInstruction()})
	require.NoError(t, err)
	assert.Nil(t, limit)
}

func TestResolveComputeUnitLimit_Requested(t *testing.T) {
	limit, err := resolveComputeUnitLimit(ComputeUnits(200_000), []solana.Instruction{testTransferInstruction()})
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.Equal(t, uint32(200_000), *limit)
}

func TestResolveComputeUnitLimit_FractionalFloors(t *testing.T) {
	// 1.9 requested units resolve to 1: truncation, not rounding.
	limit, err := resolveComputeUnitLimit(ComputeUnitsFromFloat(1.9), []solana.Instruction{testTransferInstruction()})
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.Equal(t, uint32(1), *limit)
}

func TestResolveComputeUnitLimit_AlreadyPresent(t *testing.T) {
	// An explicit caller-supplied directive wins over injection.
	existing := computebudget.NewSetComputeUnitLimitInstruction(100).Build()
	limit, err := resolveComputeUnitLimit(ComputeUnits(200_000), []solana.Instruction{existing, testTransferInstruction()})
	require.NoError(t, err)
	assert.Nil(t, limit)
}

func TestResolveComputeUnitLimit_Overflow(t *testing.T) {
	_, err := resolveComputeUnitLimit(ComputeUnits(math.MaxUint32+1), []solana.Instruction{testTransferInstruction()})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestResolveComputeUnitLimit_InvalidFloat(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), -1.5} {
		_, err := resolveComputeUnitLimit(ComputeUnitsFromFloat(f), []solana.Instruction{testTransferInstruction()})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "value %v should fail validation", f)
	}
}

func TestResolveComputeUnitPrice_Requested(t *testing.T) {
	price, err := resolveComputeUnitPrice(ComputeUnits(1), []solana.Instruction{testTransferInstruction()})
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, uint64(1), *price)
}

func TestResolveComputeUnitPrice_AlreadyPresent(t *testing.T) {
	existing := computebudget.NewSetComputeUnitPriceInstruction(5).Build()
	price, err := resolveComputeUnitPrice(ComputeUnits(1), []solana.Instruction{existing, testTransferInstruction()})
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestBuildBudgetPrefix_LimitBeforePrice(t *testing.T) {
	limit := uint32(200_000)
	price := uint64(1)

	prefix := buildBudgetPrefix(&limit, &price)
	require.Len(t, prefix, 2)

	limitData, err := prefix[0].Data()
	require.NoError(t, err)
	assert.Equal(t, opSetComputeUnitLimit, limitData[0])

	priceData, err := prefix[1].Data()
	require.NoError(t, err)
	assert.Equal(t, opSetComputeUnitPrice, priceData[0])
}

func TestBuildBudgetPrefix_Partial(t *testing.T) {
	limit := uint32(200_000)
	assert.Len(t, buildBudgetPrefix(&limit, nil), 1)

	price := uint64(1)
	assert.Len(t, buildBudgetPrefix(nil, &price), 1)

	assert.Empty(t, buildBudgetPrefix(nil, nil))
}
