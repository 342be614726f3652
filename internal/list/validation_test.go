package list

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestErrorForListName_ValidNames(t *testing.T) {
	existing := []List{{ID: 1, Name: "Groceries"}}

	for _, name := range []string{"a", "Chores", strings.Repeat("x", 100), strings.Repeat("\u00e9", 100)} {
		assert.Empty(t, ErrorForListName(name, existing), "name %q", name)
	}
}

func TestErrorForListName_Length(t *testing.T) {
	tests := []struct {
		name  string
		input string
		lists []List
	}{
		{"empty", "", nil},
		{"too long", strings.Repeat("x", 101), nil},
		{"empty with lists", "", []List{{ID: 1, Name: ""}}},
		{"too long duplicate", strings.Repeat("y", 101), []List{{ID: 1, Name: strings.Repeat("y", 101)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, MsgListNameLength, ErrorForListName(tt.input, tt.lists))
		})
	}
}

func TestErrorForListName_Unique(t *testing.T) {
	existing := []List{{ID: 1, Name: "Groceries"}, {ID: 2, Name: "Chores"}}

	assert.Equal(t, MsgListNameUnique, ErrorForListName("Chores", existing))
	// Exact match only.
	assert.Empty(t, ErrorForListName("chores", existing))
	assert.Empty(t, ErrorForListName("Chores ", existing))
}

func TestErrorForTodo(t *testing.T) {
	assert.Empty(t, ErrorForTodo("buy milk"))
	assert.Empty(t, ErrorForTodo(strings.Repeat("x", 100)))
	assert.Equal(t, MsgTodoNameLength, ErrorForTodo(""))
	assert.Equal(t, MsgTodoNameLength, ErrorForTodo(strings.Repeat("x", 101)))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Groceries", NormalizeName("  Groceries\t\n"))
	assert.Equal(t, "caf\u00e9", NormalizeName("cafe\u0301"))
	assert.Equal(t, "", NormalizeName("   "))

	// A decomposed name of 100 characters is 101 code points before normalization.
	decomposed := strings.Repeat("x", 99) + "e\u0301"
	assert.Equal(t, MsgListNameLength, ErrorForListName(decomposed, nil))
	assert.Empty(t, ErrorForListName(NormalizeName(decomposed), nil))
}

func TestNormalizeName_InvalidUTF8(t *testing.T) {
	assert.Equal(t, "a\uFFFD", NormalizeName("a\xff"))
	assert.Equal(t, "a\uFFFDb", NormalizeName(" a\xff\xfeb "))
	assert.True(t, utf8.ValidString(NormalizeName("\xc3\x28")))

	existing := []List{{ID: 1, Name: NormalizeName("a\xff")}}
	assert.Equal(t, MsgListNameUnique, ErrorForListName(NormalizeName("a\xff"), existing))
	assert.Equal(t, MsgListNameUnique, ErrorForListName(NormalizeName("a\uFFFD"), existing))
}
