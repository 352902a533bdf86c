package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Penny is the smallest settable currency unit. Nominal takes are recorded
// at penny precision.
var Penny = decimal.New(1, -2) // 0.01

// Take is one immutable entry in the append-only take ledger. The current
// nominal take for a (team, member) pair is the NominalAmount of the pair's
// most recent entry. Ctime is the creation time of the membership itself,
// carried forward from the pair's first entry; Mtime is this entry's own
// timestamp.
type Take struct {
	ID            int64           `json:"id"`
	TeamID        int64           `json:"team_id"`
	MemberID      int64           `json:"member_id"`
	RecorderID    int64           `json:"recorder_id"`
	NominalAmount decimal.Decimal `json:"nominal_amount"`
	Ctime         time.Time       `json:"ctime"`
	Mtime         time.Time       `json:"mtime"`
}

// ActualTake is one row of a computed distribution table. Balance is the
// running total of funds remaining after this member was processed, not a
// per-member shortfall.
type ActualTake struct {
	MemberID      int64           `json:"member_id"`
	NominalAmount decimal.Decimal `json:"nominal_amount"`
	ActualAmount  decimal.Decimal `json:"actual_amount"`
	Balance       decimal.Decimal `json:"balance"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// Payday is a settlement run as recorded by the settlement collaborator.
// TsEnd is nil while the run is still open.
type Payday struct {
	ID      int64      `json:"id"`
	TsStart time.Time  `json:"ts_start"`
	TsEnd   *time.Time `json:"ts_end,omitempty"`
}
