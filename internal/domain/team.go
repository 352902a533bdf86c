package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team is a funding pool that distributes its available money among members.
// Distributing and NDistributingTo are denormalized counters maintained
// transactionally alongside payroll writes.
type Team struct {
	ID              int64           `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	OwnerID         int64           `json:"owner_id"`
	Available       decimal.Decimal `json:"available"`
	Receiving       decimal.Decimal `json:"receiving"`
	Distributing    decimal.Decimal `json:"distributing"`
	NDistributingTo int             `json:"ndistributing_to"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DistributionTotals is the post-merge state of a team's denormalized
// counters, returned so callers can refresh in-memory copies.
type DistributionTotals struct {
	Distributing    decimal.Decimal `json:"distributing"`
	NDistributingTo int             `json:"ndistributing_to"`
}
