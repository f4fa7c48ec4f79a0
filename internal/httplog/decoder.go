package httplog

import (
	"bytes"
	"mime"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// BinaryMarker is rendered in place of a body that is not text.
const BinaryMarker = "(not showing binary data)"

const (
	// utf8Name is the WHATWG name of UTF-8.
	utf8Name = "utf-8"
	// guessedName is the encoding the HTML sniffer falls back to.
	guessedName = "windows-1252"
)

var (
	// textMediaTypePatterns match media types that are text whatever their bytes look like.
	//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
	textMediaTypePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^text/`),
		regexp.MustCompile(`^application/(json|xml|javascript|ecmascript|x-javascript|graphql|x-ndjson|yaml|x-yaml|x-www-form-urlencoded|problem\+json|problem\+xml)$`),
		regexp.MustCompile(`\+(json|xml|yaml)$`),
	}

	// binaryMediaTypePatterns match media types that are never rendered.
	//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
	binaryMediaTypePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(image|audio|video|font)/`),
		regexp.MustCompile(`^application/(octet-stream|pdf|zip|gzip|x-gzip|x-tar|x-7z-compressed|x-bzip2|zstd|wasm|protobuf|x-protobuf|grpc|msgpack|x-msgpack|vnd\.ms-|vnd\.openxmlformats)`),
	}
)

// Body is a decoded response body: either printable text or the binary marker.
type Body struct {
	// text is the decoded body when binary is false.
	text string
	// binary marks a body that must not be printed.
	binary bool
}

// Text returns a printable body.
func Text(s string) Body {
	return Body{text: s}
}

// Binary returns the binary placeholder body.
func Binary() Body {
	return Body{binary: true}
}

// IsBinary reports whether the body is the binary placeholder.
func (b Body) IsBinary() bool {
	return b.binary
}

// Text returns the decoded text, empty for binary bodies.
func (b Body) Text() string {
	return b.text
}

// String returns the text, or BinaryMarker for binary bodies.
func (b Body) String() string {
	if b.binary {
		return BinaryMarker
	}

	return b.text
}

// DecodeOptions describes how a body was transferred.
type DecodeOptions struct {
	// ContentEncoding is the declared Content-Encoding.
	ContentEncoding string
	// ContentType is the declared Content-Type, charset included.
	ContentType string
	// SkipBody disables decompression for exchanges that carry no body.
	SkipBody bool
}

// Decode turns raw body bytes into a renderable Body. It never fails:
// anything that cannot be decompressed or read as text becomes Binary.
func Decode(body []byte, opts DecodeOptions) Body {
	if opts.SkipBody {
		return Text(string(body))
	}

	if len(body) == 0 {
		return Text("")
	}

	if opts.ContentEncoding != "" {
		// A body that fails to decompress is inspected as is.
		if decompressed, err := Decompress(body, opts.ContentEncoding); err == nil {
			body = decompressed
		}
	}

	mediaType, params := parseMediaType(opts.ContentType)

	declaredText := matchesAny(textMediaTypePatterns, mediaType)
	if !declaredText && matchesAny(binaryMediaTypePatterns, mediaType) {
		return Binary()
	}

	text, ok := decodeText(body, params["charset"], opts.ContentType)
	if !ok {
		return Binary()
	}

	if !isPrintable(text, declaredText) {
		return Binary()
	}

	return Text(text)
}

// parseMediaType returns the lower-cased media type and its parameters.
// Malformed parameters are ignored rather than rejected.
func parseMediaType(contentType string) (string, map[string]string) {
	if contentType == "" {
		return "", map[string]string{}
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
		params = map[string]string{}
	}

	return strings.ToLower(mediaType), params
}

func matchesAny(patterns []*regexp.Regexp, mediaType string) bool {
	if mediaType == "" {
		return false
	}

	for _, pattern := range patterns {
		if pattern.MatchString(mediaType) {
			return true
		}
	}

	return false
}

// decodeText converts body to UTF-8 using the declared charset, or a charset
// sniffed from a BOM or HTML meta tag, or UTF-8.
func decodeText(body []byte, label, contentType string) (string, bool) {
	enc, name := lookupEncoding(body, label, contentType)

	if name == utf8Name {
		body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
		if !utf8.Valid(body) {
			return "", false
		}

		return string(body), true
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", false
	}

	return string(decoded), true
}

// lookupEncoding returns the encoding and its WHATWG name. Unknown labels
// fall back to UTF-8.
func lookupEncoding(body []byte, label, contentType string) (encoding.Encoding, string) {
	if label != "" {
		if enc, name := charset.Lookup(label); enc != nil {
			return enc, name
		}

		return unicode.UTF8, utf8Name
	}

	// Without a BOM or meta tag the sniffer guesses windows-1252 for anything
	// that is not UTF-8. That guess is not a declaration, so it is ignored.
	if enc, name, certain := charset.DetermineEncoding(body, contentType); enc != nil &&
		(certain || name != guessedName) {
		return enc, name
	}

	return unicode.UTF8, utf8Name
}

// isPrintable rejects NUL anywhere, and other control characters unless the
// media type declared the body as text.
func isPrintable(text string, declaredText bool) bool {
	for _, r := range text {
		switch {
		case r == 0:
			return false
		case declaredText:
			continue
		case r == '\t', r == '\n', r == '\r', r == '\f', r == '\x1b':
			continue
		case r < 0x20, r == 0x7f:
			return false
		}
	}

	return true
}
