package model

import (
	"fmt"
	"time"
)

// LoanStatus is the loan state. Active is the initial state, Returned
// is terminal; a loan never reopens.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "ACTIVE"
	LoanStatusReturned LoanStatus = "RETURNED"
)

// Loan binds one catalog item to one member for a bounded period. Book
// and Member are the owning references used while a loan is live in
// memory; ISBN and UserID are the persisted identities.
type Loan struct {
	ID         string     `json:"loan_id"`
	ISBN       string     `json:"isbn"`
	UserID     string     `json:"user_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     LoanStatus `json:"status"`

	Book   *Book `json:"-"`
	Member *User `json:"-"`
}

// FindLoan filters loan lookups. Nil fields are not constrained.
type FindLoan struct {
	ID     *string     `json:"loan_id"`
	ISBN   *string     `json:"isbn"`
	UserID *string     `json:"user_id"`
	Status *LoanStatus `json:"status"`

	Limit *int `json:"limit"`
}

// NewLoan opens a loan starting now. The caller decrements the item's
// copy count; the loan only records the binding.
func NewLoan(id string, book *Book, member *User, loanPeriodDays int, now time.Time) *Loan {
	return &Loan{
		ID:         id,
		ISBN:       book.ISBN,
		UserID:     member.ID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, loanPeriodDays),
		Status:     LoanStatusActive,
		Book:       book,
		Member:     member,
	}
}

// IsOverdue is derived from the wall clock, never stored, so it cannot
// drift from the due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusActive && now.After(l.DueDate)
}

// OverdueDays counts whole days past the due date, 0 when not overdue.
func (l *Loan) OverdueDays(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}
	days := int(now.Sub(l.DueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Close transitions Active to Returned, stamps the return date and
// returns the copy to the bound item. Closing an already returned loan
// is a no-op.
func (l *Loan) Close(now time.Time) {
	if l.Status != LoanStatusActive {
		return
	}
	l.Status = LoanStatusReturned
	l.ReturnDate = &now
	if l.Book != nil {
		l.Book.ReturnCopy()
	}
}

// Renew extends the due date. An overdue loan must be settled, not
// silently extended, so renewal fails once past due.
func (l *Loan) Renew(now time.Time, extraDays int) bool {
	if l.Status != LoanStatusActive || l.IsOverdue(now) {
		return false
	}
	if extraDays <= 0 {
		return false
	}
	l.DueDate = l.DueDate.AddDate(0, 0, extraDays)
	return true
}

func (l *Loan) String() string {
	return fmt.Sprintf("Loan #%s: %s borrowed by %s | Due: %s | Status: %s",
		l.ID, l.ISBN, l.UserID, l.DueDate.Format("2006-01-02"), l.Status)
}
