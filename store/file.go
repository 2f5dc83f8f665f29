package store

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/branchlib/circulate/model"
)

// FileStore serializes each whole collection to a JSON file on every
// mutation. Simple, not write-optimized; fine for a single-writer
// desktop-scale catalog.
type FileStore struct {
	mu       sync.Mutex
	bookPath string
	userPath string
	loanPath string

	books []*model.Book
	users []*model.User
	loans []*model.Loan
}

func NewFileStore(bookPath, userPath, loanPath string) (*FileStore, error) {
	s := &FileStore{
		bookPath: bookPath,
		userPath: userPath,
		loanPath: loanPath,
	}
	if err := loadCollection(bookPath, &s.books); err != nil {
		return nil, errors.Wrapf(err, "failed to load book file %s", bookPath)
	}
	if err := loadCollection(userPath, &s.users); err != nil {
		return nil, errors.Wrapf(err, "failed to load user file %s", userPath)
	}
	if err := loadCollection(loanPath, &s.loans); err != nil {
		return nil, errors.Wrapf(err, "failed to load loan file %s", loanPath)
	}
	return s, nil
}

func loadCollection(path string, dst any) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(buf) == 0 {
		return nil
	}
	return json.Unmarshal(buf, dst)
}

func writeCollection(path string, src any) error {
	buf, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

func (s *FileStore) SaveBook(book *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.books {
		if b.ISBN == book.ISBN {
			s.books[i] = book
			return writeCollection(s.bookPath, s.books)
		}
	}
	s.books = append(s.books, book)
	return writeCollection(s.bookPath, s.books)
}

func (s *FileStore) GetBook(find *model.FindBook) (*model.Book, error) {
	list, err := s.ListBooks(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *FileStore) ListBooks(find *model.FindBook) ([]*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.Book, 0)
	for _, book := range s.books {
		if matchBook(book, find) {
			list = append(list, book)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	if find != nil && find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (s *FileStore) DeleteBook(isbn string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.books {
		if b.ISBN == isbn {
			s.books = append(s.books[:i], s.books[i+1:]...)
			return true, writeCollection(s.bookPath, s.books)
		}
	}
	return false, nil
}

func (s *FileStore) SaveUser(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == user.ID {
			s.users[i] = user
			return writeCollection(s.userPath, s.users)
		}
	}
	s.users = append(s.users, user)
	return writeCollection(s.userPath, s.users)
}

func (s *FileStore) GetUser(find *model.FindUser) (*model.User, error) {
	list, err := s.ListUsers(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *FileStore) ListUsers(find *model.FindUser) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.User, 0)
	for _, user := range s.users {
		if matchUser(user, find) {
			list = append(list, user)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if find != nil && find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (s *FileStore) DeleteUser(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return true, writeCollection(s.userPath, s.users)
		}
	}
	return false, nil
}

func (s *FileStore) SaveLoan(loan *model.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.loans {
		if l.ID == loan.ID {
			s.loans[i] = loan
			return writeCollection(s.loanPath, s.loans)
		}
	}
	s.loans = append(s.loans, loan)
	return writeCollection(s.loanPath, s.loans)
}

func (s *FileStore) GetLoan(find *model.FindLoan) (*model.Loan, error) {
	list, err := s.ListLoans(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *FileStore) ListLoans(find *model.FindLoan) ([]*model.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.Loan, 0)
	for _, loan := range s.loans {
		if matchLoan(loan, find) {
			list = append(list, loan)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BorrowDate.Before(list[j].BorrowDate) })
	if find != nil && find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}
