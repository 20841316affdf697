package rrdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCharacterStrings(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`"a" "b c"`, []string{"a", "b c"}},
		{`""`, []string{""}},
		{`"say \"hi\""`, []string{`say "hi"`}},
		{`"back\\slash"`, []string{`back\slash`}},
		{`"tab\009here"`, []string{"tab\there"}},
		{`plain "quoted one"`, []string{"plain", "quoted one"}},
	}
	for _, tt := range tests {
		got, err := splitCharacterStrings(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, bad := range []string{`"open`, `"dangling\`, `"\12"`, `"\999"`} {
		_, err := splitCharacterStrings(bad)
		assert.Error(t, err, bad)
	}
}

func TestQuoteCharacterString(t *testing.T) {
	assert.Equal(t, `"plain"`, quoteCharacterString([]byte("plain")))
	assert.Equal(t, `"a\"b\\c"`, quoteCharacterString([]byte(`a"b\c`)))
	assert.Equal(t, `"\009\255"`, quoteCharacterString([]byte{9, 255}))
	assert.Equal(t, `""`, quoteCharacterString(nil))
}

func TestTXT_EscapesRoundTrip(t *testing.T) {
	wire, err := encodeTXTData(`"quote \" and \\ and \007"`)
	require.NoError(t, err)
	text, err := decodeTXTData(wire)
	require.NoError(t, err)
	assert.Equal(t, `"quote \" and \\ and \007"`, text)

	empty, err := encodeTXTData(`""`)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, empty)
}
