package util

import (
	"strings"

	"github.com/google/uuid"
)

func GenUUID() string {
	return uuid.New().String()
}

// CleanISBN strips whitespace and hyphens from an ISBN.
func CleanISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-':
			return -1
		}
		return r
	}, isbn)
}
