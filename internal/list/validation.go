package list

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Validation messages shown to users.
const (
	MsgListNameLength = "The list name must be between 1 and 100 characters"
	MsgListNameUnique = "The list name must be unique."
	MsgTodoNameLength = "Todo name must be between 1 and 100 characters"
)

// NormalizeName replaces invalid UTF-8 with U+FFFD, trims surrounding
// whitespace and converts name to NFC, so visually identical names compare
// equal and lengths count composed characters. The result survives a JSON
// round trip unchanged.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(strings.ToValidUTF8(name, "\uFFFD")))
}

// ErrorForListName returns a user-facing message if name is not a valid new
// name among lists, or "" if it is.
func ErrorForListName(name string, lists []List) string {
	if !validLength(name) {
		return MsgListNameLength
	}
	for _, l := range lists {
		if l.Name == name {
			return MsgListNameUnique
		}
	}
	return ""
}

// ErrorForTodo returns a user-facing message if name is not a valid todo name,
// or "" if it is.
func ErrorForTodo(name string) string {
	if !validLength(name) {
		return MsgTodoNameLength
	}
	return ""
}

func validLength(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= MaxNameLength
}
