package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/branchlib/circulate/model"
)

func newTestFileStore(t *testing.T, dir string) *FileStore {
	t.Helper()
	s, err := NewFileStore(
		filepath.Join(dir, "books.json"),
		filepath.Join(dir, "users.json"),
		filepath.Join(dir, "loans.json"))
	if err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}
	return s
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s := newTestFileStore(t, dir)

	book := testEBook(t)
	if err := s.SaveBook(book); err != nil {
		t.Fatalf("Failed to save book: %v", err)
	}
	user := testMember("MEM042")
	user.Member.TotalFine = 3.00
	user.Member.ActiveLoans = []string{"loan-1"}
	if err := s.SaveUser(user); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.SaveLoan(model.NewLoan("loan-1", book, user, 14, now)); err != nil {
		t.Fatalf("Failed to save loan: %v", err)
	}

	// A second store over the same files sees everything the first wrote.
	s2 := newTestFileStore(t, dir)

	gotBook, err := s2.GetBook(&model.FindBook{ISBN: &book.ISBN})
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if gotBook == nil || gotBook.EBook == nil {
		t.Fatalf("Expected ebook after reopen, got %+v", gotBook)
	}
	if gotBook.EBook.Format != model.FormatEPUB || !gotBook.EBook.DRMProtected {
		t.Errorf("EBook fields lost on reopen: %+v", gotBook.EBook)
	}

	gotUser, err := s2.GetUser(&model.FindUser{ID: &user.ID})
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if gotUser == nil || gotUser.Member == nil {
		t.Fatalf("Expected member after reopen, got %+v", gotUser)
	}
	if gotUser.Member.TotalFine != 3.00 || len(gotUser.Member.ActiveLoans) != 1 {
		t.Errorf("Member fields lost on reopen: %+v", gotUser.Member)
	}

	loanID := "loan-1"
	gotLoan, err := s2.GetLoan(&model.FindLoan{ID: &loanID})
	if err != nil {
		t.Fatalf("Failed to get loan: %v", err)
	}
	if gotLoan == nil || gotLoan.Status != model.LoanStatusActive {
		t.Fatalf("Expected open loan after reopen, got %+v", gotLoan)
	}
	if !gotLoan.DueDate.Equal(now.AddDate(0, 0, 14)) {
		t.Errorf("Due date lost on reopen: %v", gotLoan.DueDate)
	}
}

func TestFileStoreUpsertAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := newTestFileStore(t, dir)

	book := testPrintedBook(t)
	if err := s.SaveBook(book); err != nil {
		t.Fatalf("Failed to save book: %v", err)
	}
	book.Copies = 7
	if err := s.SaveBook(book); err != nil {
		t.Fatalf("Failed to save book: %v", err)
	}

	list, err := s.ListBooks(nil)
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(list) != 1 || list[0].Copies != 7 {
		t.Fatalf("Save should upsert, got %d books", len(list))
	}

	deleted, err := s.DeleteBook(book.ISBN)
	if err != nil || !deleted {
		t.Fatalf("Expected delete to report true, got %v %v", deleted, err)
	}

	s2 := newTestFileStore(t, dir)
	got, err := s2.GetBook(&model.FindBook{ISBN: &book.ISBN})
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if got != nil {
		t.Errorf("Delete should persist across reopen, got %+v", got)
	}
}

func TestFileStoreToleratesMissingFiles(t *testing.T) {
	s := newTestFileStore(t, t.TempDir())
	list, err := s.ListBooks(nil)
	if err != nil {
		t.Fatalf("Fresh store should list empty, got %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty catalog, got %d books", len(list))
	}
}
