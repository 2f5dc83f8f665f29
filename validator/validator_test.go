package validator

import (
	"strconv"
	"testing"
	"time"
)

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"ada@example.com":     true,
		"a.b+c@sub.domain.io": true,
		"not-an-email":        false,
		"@example.com":        false,
		"ada@example":         false,
		"":                    false,
	}
	for email, want := range cases {
		if got := IsValidEmail(email); got != want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", email, got, want)
		}
	}
}

func TestIsValidISBN(t *testing.T) {
	cases := map[string]bool{
		"9780134190440":     true,
		"978-0-13-419044-0": true,
		"0136091814":        true,
		"013609181X":        true,
		"01360918 14":       true,
		"123":               false,
		"abcdefghij":        false,
		"":                  false,
	}
	for isbn, want := range cases {
		if got := IsValidISBN(isbn); got != want {
			t.Errorf("IsValidISBN(%q) = %v, want %v", isbn, got, want)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	cases := map[string]bool{
		"555-123-4567":   true,
		"(555) 123-4567": true,
		"5551234567":     true,
		"555 123 4567":   true,
		"12345":          false,
		"phone":          false,
		"":               false,
	}
	for phone, want := range cases {
		if got := IsValidPhone(phone); got != want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", phone, got, want)
		}
	}
}

func TestIsValidName(t *testing.T) {
	cases := map[string]bool{
		"Ada Lovelace":  true,
		"O'Brien":       true,
		"Jean-Luc":      true,
		"X":             false,
		"":              false,
		"R2D2":          false,
	}
	for name, want := range cases {
		if got := IsValidName(name); got != want {
			t.Errorf("IsValidName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Str0ng!Pass": true,  // all four classes
		"Str0ngPass1": true,  // upper, lower, digit
		"short1!":     false, // too short
		"alllowercase": false,
		"alllower1234": false, // only two classes
		"UPPERlower!!": true,  // upper, lower, symbol
	}
	for password, want := range cases {
		if got := IsStrongPassword(password); got != want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", password, got, want)
		}
	}
}

func TestIsValidYear(t *testing.T) {
	current := time.Now().Year()
	cases := map[int]bool{
		1000:        true,
		2015:        true,
		current:     true,
		current + 1: true, // pre-orders
		current + 2: false,
		999:         false,
		-10:         false,
	}
	for year, want := range cases {
		if got := IsValidYear(year); got != want {
			t.Errorf("IsValidYear(%d) = %v, want %v", year, got, want)
		}
	}
}

func TestValidateDispatch(t *testing.T) {
	cases := []struct {
		kind  string
		value string
		want  bool
	}{
		{"email", "ada@example.com", true},
		{"isbn", "9780134190440", true},
		{"phone", "555-123-4567", true},
		{"name", "Ada Lovelace", true},
		{"password", "Str0ng!Pass", true},
		{"year", strconv.Itoa(time.Now().Year()), true},
		{"year", "99", false},
		{"year", "soon", false},
		{"non-negative", "0", true},
		{"non-negative", "-1.5", false},
		{"unknown-kind", "anything", true},
		{"unknown-kind", "", false},
	}
	for _, tc := range cases {
		if got := Validate(tc.kind, tc.value); got != tc.want {
			t.Errorf("Validate(%q, %q) = %v, want %v", tc.kind, tc.value, got, tc.want)
		}
	}
}
