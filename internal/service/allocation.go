package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
)

// allocateTakes converts nonzero nominal takes into the actual distribution
// table for the given funds. Smaller asks are satisfied first, which
// maximizes the number of fully funded members when funds are scarce; ties
// break on membership ctime, then member ID, so the order is deterministic.
// Each row's Balance is the funds remaining after that member was processed.
func allocateTakes(takes []domain.Take, available decimal.Decimal) []domain.ActualTake {
	sorted := make([]domain.Take, len(takes))
	copy(sorted, takes)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := a.NominalAmount.Cmp(b.NominalAmount); c != 0 {
			return c < 0
		}
		if !a.Ctime.Equal(b.Ctime) {
			return a.Ctime.Before(b.Ctime)
		}
		return a.MemberID < b.MemberID
	})

	rows := make([]domain.ActualTake, 0, len(sorted))
	remaining := available
	for _, take := range sorted {
		actual := take.NominalAmount
		if actual.GreaterThan(remaining) {
			actual = remaining
		}
		remaining = remaining.Sub(actual)
		rows = append(rows, domain.ActualTake{
			MemberID:      take.MemberID,
			NominalAmount: take.NominalAmount,
			ActualAmount:  actual,
			Balance:       remaining,
		})
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.ActualAmount)
	}
	for i := range rows {
		if total.IsZero() {
			rows[i].Percentage = decimal.Zero
			continue
		}
		rows[i].Percentage = rows[i].ActualAmount.Div(total).Round(2)
	}
	return rows
}
