package domain

import "errors"

// Reason strings carried by NotAllowedError. These are part of the API
// contract; callers match on them, so they must stay stable.
const (
	ReasonSuspicious   = "user must not be flagged as suspicious"
	ReasonNoEmail      = "user must have added at least one email address"
	ReasonNoIdentity   = "user must have a verified identity"
	ReasonUnclaimed    = "user must have claimed the account"
	ReasonNotSelf      = "can only set own take"
	ReasonOwnerLimited = "owner can only add and remove members, not otherwise set takes"
	ReasonNotMember    = "can only set take if already a member of the team"
)

// NotAllowedError is returned for every take-mutation permission failure.
type NotAllowedError struct {
	Reason string
}

func (e *NotAllowedError) Error() string {
	return e.Reason
}

// NotAllowed wraps a reason string in a NotAllowedError.
func NotAllowed(reason string) error {
	return &NotAllowedError{Reason: reason}
}

// ErrInvalidAmount marks currency-amount domain failures (negative values,
// sub-penny precision). Distinct from NotAllowedError and never retried.
var ErrInvalidAmount = errors.New("invalid amount")
