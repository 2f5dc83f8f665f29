package model //import "github.com/branchlib/circulate/model"

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/branchlib/circulate/util"
)

// BookType is the catalog item variant tag.
type BookType string

const (
	BookTypeEBook   BookType = "EBOOK"
	BookTypePrinted BookType = "PRINTED"
)

func (t BookType) String() string {
	switch t {
	case BookTypeEBook:
		return "E-Book"
	case BookTypePrinted:
		return "Printed Book"
	}
	return string(t)
}

// Condition grades a printed copy.
type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
	ConditionPoor    Condition = "Poor"
)

var validConditions = []Condition{
	ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor,
}

// ParseCondition matches case-insensitively against the valid set.
func ParseCondition(s string) (Condition, error) {
	for _, c := range validConditions {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", errors.Errorf("invalid condition: %s. Valid: New, Like New, Good, Fair, Poor", s)
}

// Format is an ebook file format.
type Format string

const (
	FormatPDF  Format = "PDF"
	FormatEPUB Format = "EPUB"
	FormatMOBI Format = "MOBI"
	FormatAZW  Format = "AZW"
	FormatTXT  Format = "TXT"
)

var validFormats = []Format{FormatPDF, FormatEPUB, FormatMOBI, FormatAZW, FormatTXT}

func ParseFormat(s string) (Format, error) {
	for _, f := range validFormats {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", errors.Errorf("invalid format: %s. Valid: PDF, EPUB, MOBI, AZW, TXT", s)
}

// EBookMeta holds the ebook-only fields.
type EBookMeta struct {
	FileSizeMB   float64 `json:"file_size_mb"`
	Format       Format  `json:"format"`
	DownloadLink string  `json:"download_link"`
	DRMProtected bool    `json:"drm_protected"`
}

// PrintMeta holds the printed-only fields.
type PrintMeta struct {
	ShelfLocation string    `json:"shelf_location"`
	Condition     Condition `json:"condition"`
	Edition       int       `json:"edition"`
	Reserved      bool      `json:"reserved"`
}

// Book is a catalog item. Exactly one of EBook or Print is set,
// matching Type. ISBN is the identity and must not change after
// construction. Copies is the licensed-seat count for ebooks and the
// physical copy count for printed books.
type Book struct {
	ISBN            string   `json:"isbn"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	PublicationYear int      `json:"publication_year"`
	Copies          int      `json:"copies"`
	Type            BookType `json:"book_type"`

	EBook *EBookMeta `json:"ebook,omitempty"`
	Print *PrintMeta `json:"print,omitempty"`
}

// FindBook filters book lookups. Nil fields are not constrained.
type FindBook struct {
	ISBN   *string   `json:"isbn"`
	Title  *string   `json:"title"`
	Author *string   `json:"author"`
	Type   *BookType `json:"book_type"`

	// The maximum number of books to return.
	Limit *int `json:"limit"`
}

func NewEBook(isbn, title, author string, publicationYear, copies int, fileSizeMB float64, format Format, downloadLink string, drmProtected bool) (*Book, error) {
	if fileSizeMB <= 0 {
		return nil, errors.Errorf("file size must be positive: %f", fileSizeMB)
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	b := &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		PublicationYear: publicationYear,
		Copies:          copies,
		Type:            BookTypeEBook,
		EBook: &EBookMeta{
			FileSizeMB:   fileSizeMB,
			Format:       format,
			DownloadLink: downloadLink,
			DRMProtected: drmProtected,
		},
	}
	if err := validateCommon(b); err != nil {
		return nil, err
	}
	return b, nil
}

func NewPrintedBook(isbn, title, author string, publicationYear, copies int, shelfLocation string, condition Condition, edition int) (*Book, error) {
	if strings.TrimSpace(shelfLocation) == "" {
		return nil, errors.New("shelf location cannot be empty")
	}
	if edition <= 0 {
		return nil, errors.Errorf("edition must be positive: %d", edition)
	}
	cond, err := ParseCondition(string(condition))
	if err != nil {
		return nil, err
	}
	b := &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		PublicationYear: publicationYear,
		Copies:          copies,
		Type:            BookTypePrinted,
		Print: &PrintMeta{
			ShelfLocation: strings.TrimSpace(shelfLocation),
			Condition:     cond,
			Edition:       edition,
		},
	}
	if err := validateCommon(b); err != nil {
		return nil, err
	}
	return b, nil
}

func validateCommon(b *Book) error {
	if !b.ValidateISBN() {
		return errors.Errorf("invalid ISBN: %s", b.ISBN)
	}
	if b.Copies < 0 {
		return errors.Errorf("copies cannot be negative: %d", b.Copies)
	}
	return nil
}

// Available is derived, never stored authoritative: copies on hand and
// no reservation blocking general borrowing.
func (b *Book) Available() bool {
	if b.Copies <= 0 {
		return false
	}
	if b.Print != nil && b.Print.Reserved {
		return false
	}
	return true
}

// BorrowCopy decrements the copy count. It fails without mutation when
// no copies remain.
func (b *Book) BorrowCopy() bool {
	if b.Copies <= 0 {
		return false
	}
	b.Copies--
	return true
}

// ReturnCopy increments the copy count. It always succeeds.
func (b *Book) ReturnCopy() bool {
	b.Copies++
	return true
}

// Reserve places a hold on a printed book. A hold blocks general
// borrowing but does not consume a copy.
func (b *Book) Reserve() bool {
	if b.Print == nil {
		return false
	}
	if b.Print.Reserved || !b.Available() {
		return false
	}
	b.Print.Reserved = true
	return true
}

func (b *Book) CancelReservation() bool {
	if b.Print == nil || !b.Print.Reserved {
		return false
	}
	b.Print.Reserved = false
	return true
}

// PickupReservation converts a hold into a checkout: clears the
// reservation and borrows a copy in one step. Member eligibility is the
// caller's concern.
func (b *Book) PickupReservation() bool {
	if b.Print == nil || !b.Print.Reserved {
		return false
	}
	if b.Copies <= 0 {
		return false
	}
	b.Print.Reserved = false
	return b.BorrowCopy()
}

var (
	isbn10Matcher = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Matcher = regexp.MustCompile(`^\d{13}$`)
)

// ValidateISBN checks the 10-char or 13-digit form after stripping
// whitespace and hyphens.
func (b *Book) ValidateISBN() bool {
	clean := util.CleanISBN(b.ISBN)
	return isbn10Matcher.MatchString(clean) || isbn13Matcher.MatchString(clean)
}

// NeedsRepair reports whether a printed copy is graded Fair or Poor.
func (b *Book) NeedsRepair() bool {
	if b.Print == nil {
		return false
	}
	return b.Print.Condition == ConditionFair || b.Print.Condition == ConditionPoor
}

// Relocate moves a printed book to a new shelf.
func (b *Book) Relocate(shelfLocation string) error {
	if b.Print == nil {
		return errors.New("not a printed book")
	}
	if strings.TrimSpace(shelfLocation) == "" {
		return errors.New("shelf location cannot be empty")
	}
	b.Print.ShelfLocation = strings.TrimSpace(shelfLocation)
	return nil
}

// UpdateCondition re-grades a printed copy.
func (b *Book) UpdateCondition(condition string) error {
	if b.Print == nil {
		return errors.New("not a printed book")
	}
	cond, err := ParseCondition(condition)
	if err != nil {
		return err
	}
	b.Print.Condition = cond
	return nil
}

// FileInfo describes an ebook's file for display.
func (b *Book) FileInfo() string {
	if b.EBook == nil {
		return ""
	}
	drm := ""
	if b.EBook.DRMProtected {
		drm = " (DRM Protected)"
	}
	return fmt.Sprintf("%s format, %.2f MB%s", b.EBook.Format, b.EBook.FileSizeMB, drm)
}

// DownloadAvailable reports whether an ebook has a download link.
func (b *Book) DownloadAvailable() bool {
	return b.EBook != nil && b.EBook.DownloadLink != ""
}

// CompatibleWithDevice reports whether an ebook's format is readable on
// the named device.
func (b *Book) CompatibleWithDevice(device string) bool {
	if b.EBook == nil {
		return false
	}
	device = strings.ToLower(strings.TrimSpace(device))
	if device == "" {
		return false
	}

	switch b.EBook.Format {
	case FormatPDF:
		return strings.Contains(device, "tablet") ||
			strings.Contains(device, "computer") ||
			strings.Contains(device, "phone") ||
			strings.Contains(device, "ipad") ||
			strings.Contains(device, "android")
	case FormatEPUB:
		// Plain kindles cannot read epub, fire tablets can.
		if strings.Contains(device, "kindle") && !strings.Contains(device, "fire") {
			return false
		}
		return true
	case FormatMOBI:
		return strings.Contains(device, "kindle")
	default:
		return strings.Contains(device, "computer")
	}
}

// Details is the one-line display form.
func (b *Book) Details() string {
	return fmt.Sprintf("%q by %s (%d) - ISBN: %s", b.Title, b.Author, b.PublicationYear, b.ISBN)
}
