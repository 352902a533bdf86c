package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMergeDistributionIncrementsOnNewPayee(t *testing.T) {
	stored := map[int64]decimal.Decimal{}
	_, totals := MergeDistribution(stored, 0, map[int64]decimal.Decimal{1: dec("0.01")})

	assert.Equal(t, 1, totals.NDistributingTo)
	assert.True(t, totals.Distributing.Equal(dec("0.01")))
}

func TestMergeDistributionDoesNotIncrementForExistingPayee(t *testing.T) {
	stored := map[int64]decimal.Decimal{}
	nd := 0
	for _, amount := range []string{"0.01", "0.02", "0.40", "0.03"} {
		var totals DistributionTotals
		stored, totals = MergeDistribution(stored, nd, map[int64]decimal.Decimal{1: dec(amount)})
		nd = totals.NDistributingTo
	}
	assert.Equal(t, 1, nd)
}

func TestMergeDistributionDecrementsOnZeroing(t *testing.T) {
	stored, totals := MergeDistribution(nil, 0, map[int64]decimal.Decimal{1: dec("0.01")})
	assert.Equal(t, 1, totals.NDistributingTo)

	stored, totals = MergeDistribution(stored, totals.NDistributingTo, map[int64]decimal.Decimal{1: decimal.Zero})
	assert.Equal(t, 0, totals.NDistributingTo)
	assert.True(t, totals.Distributing.IsZero())
}

func TestMergeDistributionNeverGoesNegative(t *testing.T) {
	stored, totals := MergeDistribution(nil, 0, map[int64]decimal.Decimal{1: dec("0.01")})
	nd := totals.NDistributingTo
	for i := 0; i < 5; i++ {
		stored, totals = MergeDistribution(stored, nd, map[int64]decimal.Decimal{1: decimal.Zero})
		nd = totals.NDistributingTo
	}
	assert.Equal(t, 0, nd)
}

func TestMergeDistributionIsIdempotent(t *testing.T) {
	updates := map[int64]decimal.Decimal{1: dec("0.80"), 2: dec("0.30")}
	stored, first := MergeDistribution(nil, 0, updates)
	_, second := MergeDistribution(stored, first.NDistributingTo, updates)

	assert.Equal(t, first.NDistributingTo, second.NDistributingTo)
	assert.True(t, first.Distributing.Equal(second.Distributing))
}

func TestMergeDistributionSumsAcrossMembers(t *testing.T) {
	stored, _ := MergeDistribution(nil, 0, map[int64]decimal.Decimal{1: dec("0.30")})
	_, totals := MergeDistribution(stored, 1, map[int64]decimal.Decimal{2: dec("0.70")})

	assert.True(t, totals.Distributing.Equal(dec("1.00")))
	assert.Equal(t, 2, totals.NDistributingTo)
}

func TestMergeTakingOverridesNamedTeams(t *testing.T) {
	stored := map[int64]decimal.Decimal{10: dec("0.01"), 20: dec("5.00")}
	taking := MergeTaking(stored, map[int64]decimal.Decimal{10: dec("5.37")})

	assert.True(t, taking.Equal(dec("10.37")))
}

func TestMergeTakingIncludesNewTeams(t *testing.T) {
	taking := MergeTaking(nil, map[int64]decimal.Decimal{10: dec("0.01")})
	assert.True(t, taking.Equal(dec("0.01")))
}

func TestMergeTakingEmpty(t *testing.T) {
	assert.True(t, MergeTaking(nil, nil).IsZero())
}
