package service

import (
	"time"

	"github.com/branchlib/circulate/model"
)

const (
	defaultFineRatePerDay = 0.50
	defaultMaxFine        = 20.00

	firstOffenderDiscount = 0.10
)

// FineCalculator is a stateless policy converting overdue duration
// into a bounded fine. The cap keeps abandoned loans from accruing
// without limit.
type FineCalculator struct {
	ratePerDay float64
	maxFine    float64
}

func NewFineCalculator(ratePerDay, maxFine float64) *FineCalculator {
	if ratePerDay < 0 {
		ratePerDay = defaultFineRatePerDay
	}
	if maxFine <= 0 {
		maxFine = defaultMaxFine
	}
	return &FineCalculator{ratePerDay: ratePerDay, maxFine: maxFine}
}

func DefaultFineCalculator() *FineCalculator {
	return NewFineCalculator(defaultFineRatePerDay, defaultMaxFine)
}

// Fine is 0 for a loan that is not overdue, otherwise overdue days
// times the daily rate, capped.
func (c *FineCalculator) Fine(loan *model.Loan, now time.Time) float64 {
	if !loan.IsOverdue(now) {
		return 0
	}

	fine := float64(loan.OverdueDays(now)) * c.ratePerDay
	if fine > c.maxFine {
		fine = c.maxFine
	}
	return fine
}

// ApplyDiscount gives a first offender (running balance zero) 10% off
// the newly computed fine. Pure; the caller applies the result.
func (c *FineCalculator) ApplyDiscount(member *model.User, fine float64) float64 {
	if member == nil || member.Member == nil {
		return fine
	}
	if member.Member.TotalFine == 0 {
		return fine * (1 - firstOffenderDiscount)
	}
	return fine
}

func (c *FineCalculator) Rate() float64 {
	return c.ratePerDay
}

func (c *FineCalculator) MaxFine() float64 {
	return c.maxFine
}
