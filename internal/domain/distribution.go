package domain

import "github.com/shopspring/decimal"

// MergeDistribution folds a batch of confirmed per-member amounts into a
// team's stored payroll figures and recomputes the denormalized counters.
// ndistributingTo moves by exactly one per zero/nonzero transition of a
// stored amount and never drops below zero, so re-applying an unchanged
// batch is a no-op. The returned map is the post-merge payroll state.
func MergeDistribution(stored map[int64]decimal.Decimal, ndistributingTo int, updates map[int64]decimal.Decimal) (map[int64]decimal.Decimal, DistributionTotals) {
	merged := make(map[int64]decimal.Decimal, len(stored)+len(updates))
	for memberID, amount := range stored {
		merged[memberID] = amount
	}
	for memberID, amount := range updates {
		old := merged[memberID]
		switch {
		case old.IsZero() && !amount.IsZero():
			ndistributingTo++
		case !old.IsZero() && amount.IsZero():
			if ndistributingTo > 0 {
				ndistributingTo--
			}
		}
		merged[memberID] = amount
	}
	distributing := decimal.Zero
	for _, amount := range merged {
		distributing = distributing.Add(amount)
	}
	return merged, DistributionTotals{Distributing: distributing, NDistributingTo: ndistributingTo}
}

// MergeTaking recomputes a member's total taking across teams: updates win
// for the teams they name, the stored payroll figure is used everywhere else.
func MergeTaking(stored map[int64]decimal.Decimal, updates map[int64]decimal.Decimal) decimal.Decimal {
	taking := decimal.Zero
	for teamID, amount := range stored {
		if _, ok := updates[teamID]; ok {
			continue
		}
		taking = taking.Add(amount)
	}
	for _, amount := range updates {
		taking = taking.Add(amount)
	}
	return taking
}
