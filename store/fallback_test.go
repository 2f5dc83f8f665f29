package store

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/branchlib/circulate/model"
)

// brokenBackend fails every call, standing in for a primary whose
// storage went away.
type brokenBackend struct{}

var errBackendDown = errors.New("backend down")

func (brokenBackend) SaveBook(*model.Book) error                       { return errBackendDown }
func (brokenBackend) GetBook(*model.FindBook) (*model.Book, error)     { return nil, errBackendDown }
func (brokenBackend) ListBooks(*model.FindBook) ([]*model.Book, error) { return nil, errBackendDown }
func (brokenBackend) DeleteBook(string) (bool, error)                  { return false, errBackendDown }
func (brokenBackend) SaveUser(*model.User) error                       { return errBackendDown }
func (brokenBackend) GetUser(*model.FindUser) (*model.User, error)     { return nil, errBackendDown }
func (brokenBackend) ListUsers(*model.FindUser) ([]*model.User, error) { return nil, errBackendDown }
func (brokenBackend) DeleteUser(string) (bool, error)                  { return false, errBackendDown }
func (brokenBackend) SaveLoan(*model.Loan) error                       { return errBackendDown }
func (brokenBackend) GetLoan(*model.FindLoan) (*model.Loan, error)     { return nil, errBackendDown }
func (brokenBackend) ListLoans(*model.FindLoan) ([]*model.Loan, error) { return nil, errBackendDown }

func TestFallbackWritePrefersPrimary(t *testing.T) {
	primary := NewMemoryStore()
	secondary := NewMemoryStore()
	s := NewFallbackStore(primary, secondary)

	book := testPrintedBook(t)
	if err := s.SaveBook(book); err != nil {
		t.Fatalf("Failed to save book: %v", err)
	}

	got, err := primary.GetBook(&model.FindBook{ISBN: &book.ISBN})
	if err != nil || got == nil {
		t.Fatalf("Write should land on the primary, got %v %v", got, err)
	}
	// Never both: the secondary must stay untouched.
	got, err = secondary.GetBook(&model.FindBook{ISBN: &book.ISBN})
	if err != nil {
		t.Fatalf("Failed to read secondary: %v", err)
	}
	if got != nil {
		t.Errorf("Healthy primary should keep the secondary empty, got %+v", got)
	}
}

func TestFallbackWriteUsesSecondaryWhenPrimaryFails(t *testing.T) {
	secondary := NewMemoryStore()
	s := NewFallbackStore(brokenBackend{}, secondary)

	book := testPrintedBook(t)
	if err := s.SaveBook(book); err != nil {
		t.Fatalf("Secondary should absorb the write, got %v", err)
	}

	got, err := secondary.GetBook(&model.FindBook{ISBN: &book.ISBN})
	if err != nil || got == nil {
		t.Fatalf("Write should land on the secondary, got %v %v", got, err)
	}
}

func TestFallbackReadFallsBackOnError(t *testing.T) {
	secondary := NewMemoryStore()
	user := testMember("MEM042")
	if err := secondary.SaveUser(user); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}
	s := NewFallbackStore(brokenBackend{}, secondary)

	got, err := s.GetUser(&model.FindUser{ID: &user.ID})
	if err != nil {
		t.Fatalf("Read should fall back, got %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("Expected the secondary's record, got %+v", got)
	}
}

func TestFallbackReadFallsBackOnMiss(t *testing.T) {
	primary := NewMemoryStore()
	secondary := NewMemoryStore()
	book := testEBook(t)
	if err := secondary.SaveBook(book); err != nil {
		t.Fatalf("Failed to save book: %v", err)
	}
	s := NewFallbackStore(primary, secondary)

	got, err := s.GetBook(&model.FindBook{ISBN: &book.ISBN})
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if got == nil {
		t.Fatalf("A primary miss should consult the secondary")
	}

	list, err := s.ListBooks(nil)
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Empty primary list should consult the secondary, got %d", len(list))
	}
}

func TestFallbackReadPrefersPrimary(t *testing.T) {
	primary := NewMemoryStore()
	secondary := NewMemoryStore()

	fresh := testPrintedBook(t)
	fresh.Copies = 9
	if err := primary.SaveBook(fresh); err != nil {
		t.Fatalf("Failed to save book: %v", err)
	}
	stale := testPrintedBook(t)
	stale.Copies = 1
	if err := secondary.SaveBook(stale); err != nil {
		t.Fatalf("Failed to save book: %v", err)
	}

	s := NewFallbackStore(primary, secondary)
	got, err := s.GetBook(&model.FindBook{ISBN: &fresh.ISBN})
	if err != nil || got == nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if got.Copies != 9 {
		t.Errorf("Primary hit should win over the secondary, got copies=%d", got.Copies)
	}
}

func TestFallbackDeleteFallsThrough(t *testing.T) {
	primary := NewMemoryStore()
	secondary := NewMemoryStore()
	book := testPrintedBook(t)
	if err := secondary.SaveBook(book); err != nil {
		t.Fatalf("Failed to save book: %v", err)
	}

	s := NewFallbackStore(primary, secondary)
	deleted, err := s.DeleteBook(book.ISBN)
	if err != nil || !deleted {
		t.Fatalf("Delete should reach the secondary when the primary has no row, got %v %v", deleted, err)
	}
}
