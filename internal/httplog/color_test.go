package httplog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseColor tests color name validation and normalization.
func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		foreground  string
		background  string
		expected    Color
		expectError bool
	}{
		{name: "none", expected: Color{}},
		{name: "single", foreground: "red", expected: Color{Foreground: "red"}},
		{name: "pair", foreground: "black", background: "yellow", expected: Color{Foreground: "black", Background: "yellow"}},
		{name: "case and dashes", foreground: " Bright-Cyan ", expected: Color{Foreground: "bright_cyan"}},
		{name: "unknown foreground", foreground: "purple", expectError: true},
		{name: "unknown background", foreground: "red", background: "plaid", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := ParseColor(tt.foreground, tt.background)
			if tt.expectError {
				require.ErrorIs(t, err, ErrUnknownColor)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

// TestColor_Wrap tests the escape sequences around a line.
func TestColor_Wrap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", Color{}.Wrap("plain"))
	assert.Equal(t, "\x1b[31mtext\x1b[0m", SingleColor("red").Wrap("text"))
	assert.Equal(t, "\x1b[30m\x1b[43mtext\x1b[0m", Color{Foreground: "black", Background: "yellow"}.Wrap("text"))
	assert.Equal(t, "\x1b[44mtext\x1b[0m", Color{Background: "blue"}.Wrap("text"))
	assert.Equal(t, "\x1b[92mtext\x1b[0m", SingleColor("bright_green").Wrap("text"))
	assert.Equal(t, "text", SingleColor("nope").Wrap("text"))
}
