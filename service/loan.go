package service

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/branchlib/circulate/config"
	"github.com/branchlib/circulate/log"
	"github.com/branchlib/circulate/model"
	"github.com/branchlib/circulate/store"
	"github.com/branchlib/circulate/util"
)

// LoanService orchestrates the borrow/return/renew workflows. It is
// the only component that mutates a book, a loan and a member
// together, and it holds the critical section around the
// check-availability/decrement/create sequence so the last copy cannot
// be double-lent.
type LoanService struct {
	mu    sync.Mutex
	books store.BookRepository
	users store.UserRepository
	loans store.LoanRepository
	calc  *FineCalculator

	// now is swappable for tests.
	now func() time.Time
}

func NewLoanService(books store.BookRepository, users store.UserRepository, loans store.LoanRepository, calc *FineCalculator) *LoanService {
	if calc == nil {
		calc = DefaultFineCalculator()
	}
	return &LoanService{
		books: books,
		users: users,
		loans: loans,
		calc:  calc,
		now:   time.Now,
	}
}

// SetClock overrides the wall clock. Test hook.
func (s *LoanService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *LoanService) getMember(memberID string) (*model.User, error) {
	if memberID == "" {
		return nil, errors.New("member id is required")
	}
	user, err := s.users.GetUser(&model.FindUser{ID: &memberID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsMember() {
		return nil, ErrNotAMember
	}
	return user, nil
}

func (s *LoanService) getBook(isbn string) (*model.Book, error) {
	if isbn == "" {
		return nil, errors.New("isbn is required")
	}
	book, err := s.books.GetBook(&model.FindBook{ISBN: &isbn})
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// Borrow opens a loan for the member. Copy decrement and loan creation
// are one atomic unit: either both happen and every change persists,
// or neither does.
func (s *LoanService) Borrow(memberID, isbn string, loanPeriodDays int) (*model.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loanPeriodDays <= 0 {
		return nil, errors.Errorf("loan period must be positive: %d", loanPeriodDays)
	}

	member, err := s.getMember(memberID)
	if err != nil {
		return nil, err
	}
	book, err := s.getBook(isbn)
	if err != nil {
		return nil, err
	}

	if !member.CanBorrowMore() {
		return nil, ErrNotEligible
	}
	if !book.Available() {
		return nil, ErrBookNotAvailable
	}

	if !book.BorrowCopy() {
		// Available() held, so this only fires if the copy count
		// changed underneath us; no loan is created either way.
		return nil, ErrBookNotAvailable
	}

	loan := model.NewLoan(util.GenUUID(), book, member, loanPeriodDays, s.now())
	member.AddActiveLoan(loan.ID)

	if err := s.persistBorrow(book, member, loan); err != nil {
		// Roll the in-memory mutation back and re-persist the restored
		// state so the caller never sees a half-applied borrow.
		book.ReturnCopy()
		member.RemoveActiveLoan(loan.ID)
		s.compensateBorrow(book, member)
		return nil, err
	}

	log.Info("loan opened",
		zap.String("loan_id", loan.ID),
		zap.String("isbn", book.ISBN),
		zap.String("member", member.ID),
		zap.Time("due", loan.DueDate))
	return loan, nil
}

// persistBorrow writes the loan row last: a failure on any earlier
// write leaves no loan behind, so a failed borrow never produces a
// persisted ACTIVE loan.
func (s *LoanService) persistBorrow(book *model.Book, member *model.User, loan *model.Loan) error {
	if err := s.books.SaveBook(book); err != nil {
		return errors.Wrap(err, "failed to persist book")
	}
	if err := s.users.SaveUser(member); err != nil {
		return errors.Wrap(err, "failed to persist member")
	}
	if err := s.loans.SaveLoan(loan); err != nil {
		return errors.Wrap(err, "failed to persist loan")
	}
	return nil
}

// compensateBorrow re-persists the restored book and member after an
// aborted borrow so no backend keeps the half-applied state.
func (s *LoanService) compensateBorrow(book *model.Book, member *model.User) {
	if err := s.books.SaveBook(book); err != nil {
		log.Warn("failed to restore book after aborted borrow",
			zap.String("isbn", book.ISBN), zap.Error(err))
	}
	if err := s.users.SaveUser(member); err != nil {
		log.Warn("failed to restore member after aborted borrow",
			zap.String("id", member.ID), zap.Error(err))
	}
}

// Return closes the loan and reports the fine charged. The fine is
// computed before closing, because closing freezes the return date and
// would lose the overdue state. Returning a loan that is not in the
// member's open-loan set charges nothing and mutates nothing, which
// makes a double return a no-op.
func (s *LoanService) Return(loanID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.openLoan(loanID)
	if err != nil {
		return 0, err
	}

	member, err := s.getMember(loan.UserID)
	if err != nil {
		return 0, err
	}
	if !member.HasActiveLoan(loan.ID) {
		return 0, ErrLoanNotOpen
	}
	book, err := s.getBook(loan.ISBN)
	if err != nil {
		return 0, err
	}
	loan.Book = book
	loan.Member = member

	now := s.now()
	fine := s.calc.Fine(loan, now)

	loan.Close(now)
	member.RemoveActiveLoan(loan.ID)
	if fine > 0 {
		member.AddFine(fine)
	}

	if err := s.loans.SaveLoan(loan); err != nil {
		return 0, errors.Wrap(err, "failed to persist loan")
	}
	if err := s.books.SaveBook(book); err != nil {
		return 0, errors.Wrap(err, "failed to persist book")
	}
	if err := s.users.SaveUser(member); err != nil {
		return 0, errors.Wrap(err, "failed to persist member")
	}

	log.Info("loan closed",
		zap.String("loan_id", loan.ID),
		zap.String("isbn", loan.ISBN),
		zap.Float64("fine", fine))
	return fine, nil
}

// Renew extends an open loan's due date, guarded by membership in the
// member's open-loan set. Overdue loans cannot be renewed.
func (s *LoanService) Renew(loanID string, extraDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.openLoan(loanID)
	if err != nil {
		return err
	}
	member, err := s.getMember(loan.UserID)
	if err != nil {
		return err
	}
	if !member.HasActiveLoan(loan.ID) {
		return ErrLoanNotOpen
	}

	now := s.now()
	if loan.IsOverdue(now) {
		return ErrLoanOverdue
	}
	if extraDays <= 0 {
		return errors.Errorf("renewal days must be positive: %d", extraDays)
	}
	if max := config.Opts.MaxRenewDays; max > 0 && extraDays > max {
		return errors.Errorf("a renewal cannot add more than %d days", max)
	}
	if !loan.Renew(now, extraDays) {
		return ErrLoanNotOpen
	}

	if err := s.loans.SaveLoan(loan); err != nil {
		return errors.Wrap(err, "failed to persist loan")
	}
	return nil
}

func (s *LoanService) openLoan(loanID string) (*model.Loan, error) {
	if loanID == "" {
		return nil, errors.New("loan id is required")
	}
	loan, err := s.loans.GetLoan(&model.FindLoan{ID: &loanID})
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, ErrLoanNotFound
	}
	if loan.Status != model.LoanStatusActive {
		return nil, ErrLoanNotOpen
	}
	return loan, nil
}

// PickupReservation fulfills a hold: the reserver checks the book out
// even though the reservation had made it unavailable to everyone
// else.
func (s *LoanService) PickupReservation(memberID, isbn string, loanPeriodDays int) (*model.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loanPeriodDays <= 0 {
		return nil, errors.Errorf("loan period must be positive: %d", loanPeriodDays)
	}

	member, err := s.getMember(memberID)
	if err != nil {
		return nil, err
	}
	book, err := s.getBook(isbn)
	if err != nil {
		return nil, err
	}

	if !member.CanBorrowMore() {
		return nil, ErrNotEligible
	}
	if !book.PickupReservation() {
		return nil, ErrNotReserved
	}

	loan := model.NewLoan(util.GenUUID(), book, member, loanPeriodDays, s.now())
	member.AddActiveLoan(loan.ID)

	if err := s.persistBorrow(book, member, loan); err != nil {
		book.ReturnCopy()
		book.Reserve()
		member.RemoveActiveLoan(loan.ID)
		s.compensateBorrow(book, member)
		return nil, err
	}

	log.Info("reservation picked up",
		zap.String("loan_id", loan.ID),
		zap.String("isbn", book.ISBN),
		zap.String("member", member.ID))
	return loan, nil
}

// Fine reports what returning the loan right now would charge.
func (s *LoanService) Fine(loanID string) (float64, error) {
	loan, err := s.loans.GetLoan(&model.FindLoan{ID: &loanID})
	if err != nil {
		return 0, err
	}
	if loan == nil {
		return 0, ErrLoanNotFound
	}
	return s.calc.Fine(loan, s.now()), nil
}

// ActiveLoans lists the member's open loans in borrow order.
func (s *LoanService) ActiveLoans(memberID string) ([]*model.Loan, error) {
	status := model.LoanStatusActive
	return s.loans.ListLoans(&model.FindLoan{UserID: &memberID, Status: &status})
}

// OverdueLoans lists every open loan past its due date.
func (s *LoanService) OverdueLoans() ([]*model.Loan, error) {
	status := model.LoanStatusActive
	list, err := s.loans.ListLoans(&model.FindLoan{Status: &status})
	if err != nil {
		return nil, err
	}

	now := s.now()
	overdue := make([]*model.Loan, 0)
	for _, loan := range list {
		if loan.IsOverdue(now) {
			overdue = append(overdue, loan)
		}
	}
	return overdue, nil
}

// ProcessFinePayment pays down the member's balance. The amount must
// be positive and no more than what is owed.
func (s *LoanService) ProcessFinePayment(memberID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.getMember(memberID)
	if err != nil {
		return err
	}
	if amount <= 0 || amount > member.Member.TotalFine {
		return ErrInvalidPayment
	}

	member.PayFine(amount)
	if err := s.users.SaveUser(member); err != nil {
		return errors.Wrap(err, "failed to persist member")
	}

	log.Info("fine payment processed",
		zap.String("member", member.ID),
		zap.Float64("amount", amount),
		zap.Float64("balance", member.Member.TotalFine))
	return nil
}
