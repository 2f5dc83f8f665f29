package service

import "github.com/pkg/errors"

// Business-rule failures. These are recoverable and carry the reason a
// presentation layer needs; they never indicate a storage or
// programmer error.
var (
	ErrNotEligible        = errors.New("member has reached the borrowing limit or owes a fine")
	ErrBookNotAvailable   = errors.New("book is not available")
	ErrBookNotFound       = errors.New("book not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrLoanNotFound       = errors.New("loan not found")
	ErrLoanNotOpen        = errors.New("loan is not in the member's open-loan set")
	ErrLoanOverdue        = errors.New("overdue loan must be settled, not renewed")
	ErrNotAMember         = errors.New("user is not a member")
	ErrNotReserved        = errors.New("book is not reserved")
	ErrAlreadyReserved    = errors.New("book is already reserved or not available")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidPayment     = errors.New("payment must be positive and at most the outstanding balance")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
