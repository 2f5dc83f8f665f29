package validator // import "github.com/branchlib/circulate/validator"

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/branchlib/circulate/util"
)

var (
	emailMatcher  = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneMatcher  = regexp.MustCompile(`^\(?\d{3}\)?[-\s]?\d{3}[-\s]?\d{4}$`)
	nameMatcher   = regexp.MustCompile(`^[A-Za-zÀ-ÿ'\-\s]{2,50}$`)
	isbn10Matcher = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Matcher = regexp.MustCompile(`^\d{13}$`)
	upperMatcher  = regexp.MustCompile(`[A-Z]`)
	lowerMatcher  = regexp.MustCompile(`[a-z]`)
	digitMatcher  = regexp.MustCompile(`\d`)
	symbolMatcher = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func IsValidEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailMatcher.MatchString(email)
}

// IsValidISBN accepts the 10-char form (nine digits plus a digit or X
// check character) or the 13-digit form, after stripping separators.
func IsValidISBN(isbn string) bool {
	clean := util.CleanISBN(isbn)
	return isbn10Matcher.MatchString(clean) || isbn13Matcher.MatchString(clean)
}

func IsValidPhone(phone string) bool {
	if strings.TrimSpace(phone) == "" {
		return false
	}
	return phoneMatcher.MatchString(phone)
}

func IsValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return nameMatcher.MatchString(name)
}

// IsStrongPassword requires length >= 8 and at least three of the four
// character classes.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	classes := 0
	if upperMatcher.MatchString(password) {
		classes++
	}
	if lowerMatcher.MatchString(password) {
		classes++
	}
	if digitMatcher.MatchString(password) {
		classes++
	}
	if symbolMatcher.MatchString(password) {
		classes++
	}
	return classes >= 3
}

// IsValidYear allows next year for pre-orders.
func IsValidYear(year int) bool {
	currentYear := time.Now().Year()
	return year >= 1000 && year <= currentYear+1
}

func IsNonNegative(number float64) bool {
	return number >= 0
}

// Validate dispatches on kind for callers that take the field name from
// user input. Unknown kinds fall back to a max-length check.
func Validate(kind, value string) bool {
	switch strings.ToLower(kind) {
	case "email":
		return IsValidEmail(value)
	case "isbn":
		return IsValidISBN(value)
	case "phone":
		return IsValidPhone(value)
	case "name":
		return IsValidName(value)
	case "password":
		return IsStrongPassword(value)
	case "year":
		y, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return false
		}
		return IsValidYear(y)
	case "non-negative":
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return false
		}
		return IsNonNegative(n)
	default:
		return len(value) > 0 && len(value) <= 255
	}
}
