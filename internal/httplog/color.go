package httplog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ansiReset closes every escape opened for a line.
const ansiReset = "\x1b[0m"

// backgroundOffset is the distance between a foreground and a background SGR code.
const backgroundOffset = 10

// Static error definitions for better error handling.
var (
	// ErrUnknownColor indicates that a color name is not recognized.
	ErrUnknownColor = errors.New("unknown color")
)

//nolint:gochecknoglobals // This is an immutable lookup table used as a constant.
var foregroundCodes = map[string]int{
	"black":          30,
	"red":            31,
	"green":          32,
	"yellow":         33,
	"blue":           34,
	"magenta":        35,
	"cyan":           36,
	"white":          37,
	"default":        39,
	"bright_black":   90,
	"bright_red":     91,
	"bright_green":   92,
	"bright_yellow":  93,
	"bright_blue":    94,
	"bright_magenta": 95,
	"bright_cyan":    96,
	"bright_white":   97,
}

// Color selects the ANSI foreground and background of every line.
// Empty names leave the corresponding component unset.
type Color struct {
	// Foreground is the text color name.
	Foreground string
	// Background is the background color name.
	Background string
}

// SingleColor returns a Color with only the foreground set.
func SingleColor(name string) Color {
	return Color{Foreground: name}
}

// ParseColor validates the names and returns the normalized Color.
func ParseColor(foreground, background string) (Color, error) {
	c := Color{
		Foreground: normalizeColorName(foreground),
		Background: normalizeColorName(background),
	}

	for _, name := range []string{c.Foreground, c.Background} {
		if name == "" {
			continue
		}

		if _, ok := foregroundCodes[name]; !ok {
			return Color{}, fmt.Errorf("%w: '%s'", ErrUnknownColor, name)
		}
	}

	return c, nil
}

// IsZero reports whether no color is configured.
func (c Color) IsZero() bool {
	return c.Foreground == "" && c.Background == ""
}

// Wrap surrounds s with the configured escapes, foreground first.
// Unknown names are ignored.
func (c Color) Wrap(s string) string {
	opening := c.opening()
	if opening == "" {
		return s
	}

	return opening + s + ansiReset
}

func (c Color) opening() string {
	var sb strings.Builder

	if code, ok := foregroundCodes[normalizeColorName(c.Foreground)]; ok {
		writeSGR(&sb, code)
	}

	if code, ok := foregroundCodes[normalizeColorName(c.Background)]; ok {
		writeSGR(&sb, code+backgroundOffset)
	}

	return sb.String()
}

func writeSGR(sb *strings.Builder, code int) {
	sb.WriteString("\x1b[")
	sb.WriteString(strconv.Itoa(code))
	sb.WriteByte('m')
}

func normalizeColorName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	return strings.ReplaceAll(name, "-", "_")
}
