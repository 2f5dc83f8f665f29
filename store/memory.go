package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/branchlib/circulate/model"
)

// MemoryStore keeps every collection in maps. It serves both as a
// standalone backend and as the injected secondary behind a fallback
// wrapper.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[string]*model.Book
	users map[string]*model.User
	loans map[string]*model.Loan
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[string]*model.Book),
		users: make(map[string]*model.User),
		loans: make(map[string]*model.Loan),
	}
}

func (s *MemoryStore) SaveBook(book *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[book.ISBN] = book
	return nil
}

func (s *MemoryStore) GetBook(find *model.FindBook) (*model.Book, error) {
	list, err := s.ListBooks(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *MemoryStore) ListBooks(find *model.FindBook) ([]*model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*model.Book, 0)
	for _, book := range s.books {
		if !matchBook(book, find) {
			continue
		}
		list = append(list, book)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	if find != nil && find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (s *MemoryStore) DeleteBook(isbn string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[isbn]; !ok {
		return false, nil
	}
	delete(s.books, isbn)
	return true, nil
}

func (s *MemoryStore) SaveUser(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) GetUser(find *model.FindUser) (*model.User, error) {
	list, err := s.ListUsers(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *MemoryStore) ListUsers(find *model.FindUser) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*model.User, 0)
	for _, user := range s.users {
		if !matchUser(user, find) {
			continue
		}
		list = append(list, user)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if find != nil && find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (s *MemoryStore) DeleteUser(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func (s *MemoryStore) SaveLoan(loan *model.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[loan.ID] = loan
	return nil
}

func (s *MemoryStore) GetLoan(find *model.FindLoan) (*model.Loan, error) {
	list, err := s.ListLoans(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *MemoryStore) ListLoans(find *model.FindLoan) ([]*model.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*model.Loan, 0)
	for _, loan := range s.loans {
		if !matchLoan(loan, find) {
			continue
		}
		list = append(list, loan)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BorrowDate.Before(list[j].BorrowDate) })
	if find != nil && find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func matchBook(book *model.Book, find *model.FindBook) bool {
	if find == nil {
		return true
	}
	if v := find.ISBN; v != nil && book.ISBN != *v {
		return false
	}
	// Title and author match by case-insensitive substring, like the
	// LIKE queries of the sqlite backend.
	if v := find.Title; v != nil && !strings.Contains(strings.ToLower(book.Title), strings.ToLower(*v)) {
		return false
	}
	if v := find.Author; v != nil && !strings.Contains(strings.ToLower(book.Author), strings.ToLower(*v)) {
		return false
	}
	if v := find.Type; v != nil && book.Type != *v {
		return false
	}
	return true
}

func matchUser(user *model.User, find *model.FindUser) bool {
	if find == nil {
		return true
	}
	if v := find.ID; v != nil && user.ID != *v {
		return false
	}
	if v := find.Username; v != nil && user.Username != *v {
		return false
	}
	if v := find.Email; v != nil && !strings.EqualFold(user.Email, *v) {
		return false
	}
	if v := find.Role; v != nil && user.Role != *v {
		return false
	}
	return true
}

func matchLoan(loan *model.Loan, find *model.FindLoan) bool {
	if find == nil {
		return true
	}
	if v := find.ID; v != nil && loan.ID != *v {
		return false
	}
	if v := find.ISBN; v != nil && loan.ISBN != *v {
		return false
	}
	if v := find.UserID; v != nil && loan.UserID != *v {
		return false
	}
	if v := find.Status; v != nil && loan.Status != *v {
		return false
	}
	return true
}
