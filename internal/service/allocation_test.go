package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolpay/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func take(memberID int64, nominal string, ctime time.Time) domain.Take {
	return domain.Take{MemberID: memberID, NominalAmount: dec(nominal), Ctime: ctime}
}

func TestAllocateTakesSatisfiesSmallerAsksFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	takes := []domain.Take{
		take(1, "0.80", base), // crusher
		take(2, "0.30", base.Add(time.Hour)), // bruiser
	}

	rows := allocateTakes(takes, dec("1.00"))
	require.Len(t, rows, 2)

	bruiser, crusher := rows[0], rows[1]
	assert.Equal(t, int64(2), bruiser.MemberID)
	assert.True(t, bruiser.NominalAmount.Equal(dec("0.30")))
	assert.True(t, bruiser.ActualAmount.Equal(dec("0.30")))
	assert.True(t, bruiser.Balance.Equal(dec("0.70")))
	assert.True(t, bruiser.Percentage.Equal(dec("0.3")))

	assert.Equal(t, int64(1), crusher.MemberID)
	assert.True(t, crusher.NominalAmount.Equal(dec("0.80")))
	assert.True(t, crusher.ActualAmount.Equal(dec("0.70")))
	assert.True(t, crusher.Balance.IsZero())
	assert.True(t, crusher.Percentage.Equal(dec("0.7")))
}

func TestAllocateTakesNeverExceedsAvailable(t *testing.T) {
	base := time.Now()
	takes := []domain.Take{
		take(1, "5.00", base),
		take(2, "3.00", base),
		take(3, "9.00", base),
	}

	rows := allocateTakes(takes, dec("4.00"))

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.ActualAmount)
	}
	assert.True(t, total.LessThanOrEqual(dec("4.00")))
	// 3.00 is funded in full, 5.00 gets the remaining 1.00, 9.00 gets nothing
	assert.True(t, rows[0].ActualAmount.Equal(dec("3.00")))
	assert.True(t, rows[1].ActualAmount.Equal(dec("1.00")))
	assert.True(t, rows[2].ActualAmount.IsZero())
}

func TestAllocateTakesZeroAvailable(t *testing.T) {
	rows := allocateTakes([]domain.Take{take(1, "0.50", time.Now())}, decimal.Zero)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].ActualAmount.IsZero())
	assert.True(t, rows[0].Balance.IsZero())
	assert.True(t, rows[0].Percentage.IsZero())
}

func TestAllocateTakesSurplusFundsEveryoneInFull(t *testing.T) {
	base := time.Now()
	takes := []domain.Take{
		take(1, "0.25", base),
		take(2, "0.75", base),
	}

	rows := allocateTakes(takes, dec("10.00"))

	pctSum := decimal.Zero
	for _, row := range rows {
		assert.True(t, row.ActualAmount.Equal(row.NominalAmount))
		pctSum = pctSum.Add(row.Percentage)
	}
	assert.True(t, rows[1].Balance.Equal(dec("9.00")))
	assert.True(t, pctSum.Equal(dec("1")))
}

func TestAllocateTakesBreaksTiesByCtimeThenMemberID(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	takes := []domain.Take{
		take(9, "0.50", base.Add(time.Hour)),
		take(3, "0.50", base),
		take(5, "0.50", base.Add(time.Hour)),
	}

	rows := allocateTakes(takes, dec("2.00"))

	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[0].MemberID)
	assert.Equal(t, int64(5), rows[1].MemberID)
	assert.Equal(t, int64(9), rows[2].MemberID)
}

func TestAllocateTakesEmpty(t *testing.T) {
	rows := allocateTakes(nil, dec("1.00"))
	assert.Empty(t, rows)
}

func TestAllocateTakesDoesNotMutateInput(t *testing.T) {
	base := time.Now()
	takes := []domain.Take{
		take(2, "0.80", base),
		take(1, "0.10", base),
	}

	allocateTakes(takes, dec("1.00"))

	assert.Equal(t, int64(2), takes[0].MemberID)
	assert.Equal(t, int64(1), takes[1].MemberID)
}

func TestAllocateTakesRoundsPercentages(t *testing.T) {
	base := time.Now()
	takes := []domain.Take{
		take(1, "1.00", base),
		take(2, "1.00", base),
		take(3, "1.00", base),
	}

	rows := allocateTakes(takes, dec("3.00"))

	for _, row := range rows {
		assert.True(t, row.Percentage.Equal(dec("0.33")))
	}
}
