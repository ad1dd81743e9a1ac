package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHeaderValue(t *testing.T) {
	testcases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain-ascii", in: "Hello, how are you?", want: "Hello, how are you?"},
		{name: "empty", in: "", want: ""},
		{name: "newlines-collapsed", in: "line one\nline two\r\nline three", want: "line one line two line three"},
		{name: "tabs-become-spaces", in: "a\tb", want: "a b"},
		{name: "multiple-spaces-collapsed", in: "too    many   spaces", want: "too many spaces"},
		{name: "non-ascii-replaced", in: "héllo wörld", want: "h llo w rld"},
		{name: "emoji-stripped", in: "hi 👋 there", want: "hi there"},
		{name: "control-chars-dropped", in: "a\x00b\x07c", want: "abc"},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeHeaderValue(tc.in))
		})
	}
}

func TestSanitizeHeaderValueCapsLength(t *testing.T) {
	long := strings.Repeat("a", maxHeaderValueLen+500)
	got := sanitizeHeaderValue(long)
	assert.Len(t, got, maxHeaderValueLen+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
