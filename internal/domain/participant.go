package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participant represents a user as far as the take ledger cares about one.
// Identity management lives elsewhere; the nullable flags below are consumed
// as predicates during take vetting. A nil IsSuspicious means the account was
// never reviewed, a nil ClaimedTime means it was provisioned but never
// claimed by a real user.
type Participant struct {
	ID               int64           `json:"id"`
	Username         string          `json:"username"`
	ClaimedTime      *time.Time      `json:"claimed_time,omitempty"`
	IsSuspicious     *bool           `json:"is_suspicious,omitempty"`
	VerifiedIn       *string         `json:"verified_in,omitempty"`
	HasVerifiedEmail bool            `json:"has_verified_email"`
	Taking           decimal.Decimal `json:"taking"`
}
