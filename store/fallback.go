package store

import (
	"go.uber.org/zap"

	"github.com/branchlib/circulate/log"
	"github.com/branchlib/circulate/model"
)

// FallbackStore trades strict consistency for availability: every
// write goes to the primary, or to the secondary when the primary
// fails — never both, so there is only ever one source of truth for a
// record. Reads try the primary first and consult the secondary only
// when the primary errors or comes back empty. Writes accepted by the
// secondary are invisible to a primary-only reader; callers opt into
// that by wrapping their backend.
//
// The secondary is injected rather than a process-wide static so the
// policy can be exercised in isolation.
type FallbackStore struct {
	primary   Backend
	secondary Backend
}

// Backend is the full set of repository contracts a fallback pair must
// satisfy.
type Backend interface {
	BookRepository
	UserRepository
	LoanRepository
}

func NewFallbackStore(primary, secondary Backend) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

func (s *FallbackStore) SaveBook(book *model.Book) error {
	if err := s.primary.SaveBook(book); err != nil {
		log.Warn("primary store rejected book write, using secondary",
			zap.String("isbn", book.ISBN), zap.Error(err))
		return s.secondary.SaveBook(book)
	}
	return nil
}

func (s *FallbackStore) GetBook(find *model.FindBook) (*model.Book, error) {
	book, err := s.primary.GetBook(find)
	if err != nil {
		log.Warn("primary store read failed, using secondary", zap.Error(err))
		return s.secondary.GetBook(find)
	}
	if book == nil {
		return s.secondary.GetBook(find)
	}
	return book, nil
}

func (s *FallbackStore) ListBooks(find *model.FindBook) ([]*model.Book, error) {
	list, err := s.primary.ListBooks(find)
	if err != nil {
		log.Warn("primary store read failed, using secondary", zap.Error(err))
		return s.secondary.ListBooks(find)
	}
	if len(list) == 0 {
		return s.secondary.ListBooks(find)
	}
	return list, nil
}

func (s *FallbackStore) DeleteBook(isbn string) (bool, error) {
	deleted, err := s.primary.DeleteBook(isbn)
	if err != nil {
		log.Warn("primary store delete failed, using secondary",
			zap.String("isbn", isbn), zap.Error(err))
		return s.secondary.DeleteBook(isbn)
	}
	if !deleted {
		return s.secondary.DeleteBook(isbn)
	}
	return true, nil
}

func (s *FallbackStore) SaveUser(user *model.User) error {
	if err := s.primary.SaveUser(user); err != nil {
		log.Warn("primary store rejected user write, using secondary",
			zap.String("id", user.ID), zap.Error(err))
		return s.secondary.SaveUser(user)
	}
	return nil
}

func (s *FallbackStore) GetUser(find *model.FindUser) (*model.User, error) {
	user, err := s.primary.GetUser(find)
	if err != nil {
		log.Warn("primary store read failed, using secondary", zap.Error(err))
		return s.secondary.GetUser(find)
	}
	if user == nil {
		return s.secondary.GetUser(find)
	}
	return user, nil
}

func (s *FallbackStore) ListUsers(find *model.FindUser) ([]*model.User, error) {
	list, err := s.primary.ListUsers(find)
	if err != nil {
		log.Warn("primary store read failed, using secondary", zap.Error(err))
		return s.secondary.ListUsers(find)
	}
	if len(list) == 0 {
		return s.secondary.ListUsers(find)
	}
	return list, nil
}

func (s *FallbackStore) DeleteUser(id string) (bool, error) {
	deleted, err := s.primary.DeleteUser(id)
	if err != nil {
		log.Warn("primary store delete failed, using secondary",
			zap.String("id", id), zap.Error(err))
		return s.secondary.DeleteUser(id)
	}
	if !deleted {
		return s.secondary.DeleteUser(id)
	}
	return true, nil
}

func (s *FallbackStore) SaveLoan(loan *model.Loan) error {
	if err := s.primary.SaveLoan(loan); err != nil {
		log.Warn("primary store rejected loan write, using secondary",
			zap.String("loan_id", loan.ID), zap.Error(err))
		return s.secondary.SaveLoan(loan)
	}
	return nil
}

func (s *FallbackStore) GetLoan(find *model.FindLoan) (*model.Loan, error) {
	loan, err := s.primary.GetLoan(find)
	if err != nil {
		log.Warn("primary store read failed, using secondary", zap.Error(err))
		return s.secondary.GetLoan(find)
	}
	if loan == nil {
		return s.secondary.GetLoan(find)
	}
	return loan, nil
}

func (s *FallbackStore) ListLoans(find *model.FindLoan) ([]*model.Loan, error) {
	list, err := s.primary.ListLoans(find)
	if err != nil {
		log.Warn("primary store read failed, using secondary", zap.Error(err))
		return s.secondary.ListLoans(find)
	}
	if len(list) == 0 {
		return s.secondary.ListLoans(find)
	}
	return list, nil
}
