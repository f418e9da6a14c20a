package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIncompleteRune(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		complete string
		rest     string
	}{
		{"empty", "", "", ""},
		{"ascii", "hello", "hello", ""},
		{"complete two byte", "caf\xc3\xa9", "caf\xc3\xa9", ""},
		{"partial two byte", "caf\xc3", "caf", "\xc3"},
		{"partial three byte", "ok\xe2\x9c", "ok", "\xe2\x9c"},
		{"complete four byte", "\xf0\x9f\x98\x80", "\xf0\x9f\x98\x80", ""},
		{"partial four byte", "a\xf0\x9f\x98", "a", "\xf0\x9f\x98"},
		{"lone lead only", "\xe2", "", "\xe2"},
		{"stray continuation", "a\x80", "a\x80", ""},
		{"invalid byte", "a\xff", "a\xff", ""},
		{"escape sequence", "\x1b[31mred\x1b[0m", "\x1b[31mred\x1b[0m", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, rest := splitIncompleteRune([]byte(tt.in))
			assert.Equal(t, tt.complete, string(complete))
			assert.Equal(t, tt.rest, string(rest))
		})
	}
}
