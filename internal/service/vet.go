package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"poolpay/internal/domain"
)

// vetParticipant runs the four eligibility checks on one party to a take
// change, in the contract's order: suspiciousness, email, verified identity,
// claimed account. blockUnreviewed decides whether a never-reviewed account
// (is_suspicious NULL) is treated like a suspicious one.
func vetParticipant(p *domain.Participant, blockUnreviewed bool) error {
	if p.IsSuspicious == nil {
		if blockUnreviewed {
			return domain.NotAllowed(domain.ReasonSuspicious)
		}
	} else if *p.IsSuspicious {
		return domain.NotAllowed(domain.ReasonSuspicious)
	}
	if !p.HasVerifiedEmail {
		return domain.NotAllowed(domain.ReasonNoEmail)
	}
	if p.VerifiedIn == nil || *p.VerifiedIn == "" {
		return domain.NotAllowed(domain.ReasonNoIdentity)
	}
	if p.ClaimedTime == nil {
		return domain.NotAllowed(domain.ReasonUnclaimed)
	}
	return nil
}

// validateAmount rejects negative amounts and amounts finer than a penny.
func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s is negative", domain.ErrInvalidAmount, amount)
	}
	if !amount.Mul(decimal.New(100, 0)).IsInteger() {
		return fmt.Errorf("%w: %s is not a whole number of pennies", domain.ErrInvalidAmount, amount)
	}
	return nil
}
