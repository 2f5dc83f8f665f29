package service

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/branchlib/circulate/log"
	"github.com/branchlib/circulate/model"
	"github.com/branchlib/circulate/store"
	"github.com/branchlib/circulate/validator"
)

// BookService manages the catalog and the reservation flows that touch
// only the book itself.
type BookService struct {
	books store.BookRepository
}

func NewBookService(books store.BookRepository) *BookService {
	return &BookService{books: books}
}

// AddEBook validates and catalogs an ebook.
func (s *BookService) AddEBook(isbn, title, author string, publicationYear, copies int, fileSizeMB float64, format model.Format, downloadLink string, drmProtected bool) (*model.Book, error) {
	if err := s.validateCatalogInput(isbn, title, publicationYear); err != nil {
		return nil, err
	}
	book, err := model.NewEBook(isbn, title, author, publicationYear, copies, fileSizeMB, format, downloadLink, drmProtected)
	if err != nil {
		return nil, err
	}
	if err := s.books.SaveBook(book); err != nil {
		return nil, errors.Wrap(err, "failed to persist book")
	}
	log.Info("book cataloged", zap.String("isbn", book.ISBN), zap.String("type", book.Type.String()))
	return book, nil
}

// AddPrintedBook validates and catalogs a printed book.
func (s *BookService) AddPrintedBook(isbn, title, author string, publicationYear, copies int, shelfLocation string, condition model.Condition, edition int) (*model.Book, error) {
	if err := s.validateCatalogInput(isbn, title, publicationYear); err != nil {
		return nil, err
	}
	book, err := model.NewPrintedBook(isbn, title, author, publicationYear, copies, shelfLocation, condition, edition)
	if err != nil {
		return nil, err
	}
	if err := s.books.SaveBook(book); err != nil {
		return nil, errors.Wrap(err, "failed to persist book")
	}
	log.Info("book cataloged", zap.String("isbn", book.ISBN), zap.String("type", book.Type.String()))
	return book, nil
}

func (s *BookService) validateCatalogInput(isbn, title string, publicationYear int) error {
	if !validator.IsValidISBN(isbn) {
		return errors.Errorf("invalid ISBN: %s", isbn)
	}
	if title == "" {
		return errors.New("title is empty")
	}
	if !validator.IsValidYear(publicationYear) {
		return errors.Errorf("invalid publication year: %d", publicationYear)
	}
	return nil
}

func (s *BookService) Get(isbn string) (*model.Book, error) {
	return s.books.GetBook(&model.FindBook{ISBN: &isbn})
}

func (s *BookService) List() ([]*model.Book, error) {
	return s.books.ListBooks(&model.FindBook{})
}

func (s *BookService) SearchByTitle(title string) ([]*model.Book, error) {
	return s.books.ListBooks(&model.FindBook{Title: &title})
}

func (s *BookService) SearchByAuthor(author string) ([]*model.Book, error) {
	return s.books.ListBooks(&model.FindBook{Author: &author})
}

func (s *BookService) Remove(isbn string) (bool, error) {
	return s.books.DeleteBook(isbn)
}

// UpdateCopies replaces the total copy count, e.g. after acquisitions
// or write-offs.
func (s *BookService) UpdateCopies(isbn string, copies int) error {
	if copies < 0 {
		return errors.Errorf("copies cannot be negative: %d", copies)
	}
	book, err := s.Get(isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	book.Copies = copies
	return s.books.SaveBook(book)
}

// Reserve places a hold on a printed book without consuming a copy.
func (s *BookService) Reserve(isbn string) error {
	book, err := s.Get(isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	if !book.Reserve() {
		return ErrAlreadyReserved
	}
	if err := s.books.SaveBook(book); err != nil {
		return errors.Wrap(err, "failed to persist book")
	}
	log.Info("book reserved", zap.String("isbn", isbn))
	return nil
}

// CancelReservation releases a hold.
func (s *BookService) CancelReservation(isbn string) error {
	book, err := s.Get(isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	if !book.CancelReservation() {
		return ErrNotReserved
	}
	if err := s.books.SaveBook(book); err != nil {
		return errors.Wrap(err, "failed to persist book")
	}
	log.Info("reservation cancelled", zap.String("isbn", isbn))
	return nil
}

// Relocate moves a printed book to a new shelf.
func (s *BookService) Relocate(isbn, shelfLocation string) error {
	book, err := s.Get(isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	if err := book.Relocate(shelfLocation); err != nil {
		return err
	}
	return s.books.SaveBook(book)
}

// UpdateCondition re-grades a printed copy.
func (s *BookService) UpdateCondition(isbn, condition string) error {
	book, err := s.Get(isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	if err := book.UpdateCondition(condition); err != nil {
		return err
	}
	return s.books.SaveBook(book)
}
