package httplog

import (
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Field is a single header line.
type Field struct {
	// Name is the header name as captured.
	Name string
	// Value is the header value.
	Value string
}

// Header is an ordered list of header fields. Lookups ignore case.
type Header []Field

// HeaderFromHTTP converts a net/http header, ordering names alphabetically
// since Go maps carry no order. Repeated values keep their order.
func HeaderFromHTTP(src http.Header) Header {
	if len(src) == 0 {
		return nil
	}

	h := make(Header, 0, len(src))
	for _, name := range slices.Sorted(maps.Keys(src)) {
		for _, value := range src[name] {
			h = append(h, Field{Name: name, Value: value})
		}
	}

	return h
}

// Add appends a field.
func (h *Header) Add(name, value string) {
	*h = append(*h, Field{Name: name, Value: value})
}

// Get returns the first value for name, or an empty string.
func (h Header) Get(name string) string {
	for _, field := range h {
		if strings.EqualFold(field.Name, name) {
			return field.Value
		}
	}

	return ""
}

// Values returns every value for name in order.
func (h Header) Values(name string) []string {
	var values []string

	for _, field := range h {
		if strings.EqualFold(field.Name, name) {
			values = append(values, field.Value)
		}
	}

	return values
}

// Map flattens the header into a mapping keyed by the first spelling of each
// name. Repeated names are joined with ", ". The result is never nil.
func (h Header) Map() map[string]string {
	result := make(map[string]string, len(h))
	spelling := make(map[string]string, len(h))

	for _, field := range h {
		canonical := strings.ToLower(field.Name)

		key, seen := spelling[canonical]
		if !seen {
			spelling[canonical] = field.Name
			result[field.Name] = field.Value

			continue
		}

		result[key] += ", " + field.Value
	}

	return result
}
