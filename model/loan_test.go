package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

func newTestLoan(t *testing.T) (*Loan, *Book, *User) {
	t.Helper()
	book, err := NewPrintedBook("9780134190440", "The Go Programming Language", "Alan A. A. Donovan",
		2015, 1, "A-12", ConditionGood, 1)
	require.NoError(t, err)
	member := &User{
		ID:       "MEM001",
		Username: "member",
		Role:     RoleMember,
		Active:   true,
		Member:   &MemberProfile{MemberID: "M-0001", MaxBooksAllowed: 5},
	}
	require.True(t, book.BorrowCopy())
	loan := NewLoan("L1", book, member, 14, day0)
	return loan, book, member
}

func TestLoanInitialState(t *testing.T) {
	loan, _, _ := newTestLoan(t)

	assert.Equal(t, LoanStatusActive, loan.Status)
	assert.Equal(t, day(14), loan.DueDate)
	assert.Nil(t, loan.ReturnDate)
	assert.False(t, loan.IsOverdue(day(14)))
	assert.Equal(t, 0, loan.OverdueDays(day(10)))
}

func TestLoanOverdue(t *testing.T) {
	loan, _, _ := newTestLoan(t)

	assert.True(t, loan.IsOverdue(day(20)))
	assert.Equal(t, 6, loan.OverdueDays(day(20)))
	assert.Equal(t, 0, loan.OverdueDays(day(14)))
}

func TestLoanClose(t *testing.T) {
	loan, book, _ := newTestLoan(t)
	require.Equal(t, 0, book.Copies)

	loan.Close(day(10))

	assert.Equal(t, LoanStatusReturned, loan.Status)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, day(10), *loan.ReturnDate)
	assert.Equal(t, 1, book.Copies)

	// A returned loan is never overdue and closing again is a no-op.
	assert.False(t, loan.IsOverdue(day(30)))
	loan.Close(day(30))
	assert.Equal(t, day(10), *loan.ReturnDate)
	assert.Equal(t, 1, book.Copies)
}

func TestLoanRenew(t *testing.T) {
	loan, _, _ := newTestLoan(t)

	require.True(t, loan.Renew(day(10), 7))
	assert.Equal(t, day(21), loan.DueDate)

	// Overdue loans must be settled, not renewed.
	assert.False(t, loan.Renew(day(25), 7))
	assert.Equal(t, day(21), loan.DueDate)

	assert.False(t, loan.Renew(day(10), 0))

	loan.Close(day(10))
	assert.False(t, loan.Renew(day(10), 7))
}
