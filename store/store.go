// Package store defines the repository contracts and their
// interchangeable backends: an in-memory map, a flat-file store and a
// sqlite store, plus a fallback wrapper that keeps the system usable
// when the primary backend fails.
package store

import (
	"github.com/branchlib/circulate/model"
)

// BookRepository is the catalog persistence contract. Save is an
// upsert keyed by ISBN. Get returns (nil, nil) when nothing matches.
type BookRepository interface {
	SaveBook(book *model.Book) error
	GetBook(find *model.FindBook) (*model.Book, error)
	ListBooks(find *model.FindBook) ([]*model.Book, error)
	DeleteBook(isbn string) (bool, error)
}

// UserRepository is the identity persistence contract. Save is an
// upsert keyed by user ID.
type UserRepository interface {
	SaveUser(user *model.User) error
	GetUser(find *model.FindUser) (*model.User, error)
	ListUsers(find *model.FindUser) ([]*model.User, error)
	DeleteUser(id string) (bool, error)
}

// LoanRepository is the loan persistence contract. Loans are never
// deleted; closed loans stay as the audit trail.
type LoanRepository interface {
	SaveLoan(loan *model.Loan) error
	GetLoan(find *model.FindLoan) (*model.Loan, error)
	ListLoans(find *model.FindLoan) ([]*model.Loan, error)
}
