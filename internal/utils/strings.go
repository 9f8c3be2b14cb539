package utils

import (
	"strings"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace (including newlines and tabs
// from wrapped spreadsheet cells) into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
