package httplog

import (
	"net/url"
	"strings"
)

// FilteredValue replaces the value of every filtered parameter.
const FilteredValue = "[FILTERED]"

// isFiltered reports whether name is listed in FilterParameters, ignoring case.
func (c Configuration) isFiltered(name string) bool {
	for _, filtered := range c.FilterParameters {
		if strings.EqualFold(strings.TrimSpace(filtered), name) {
			return true
		}
	}

	return false
}

// filterURL masks filtered query parameters, leaving the rest of the URL untouched.
func (c Configuration) filterURL(rawURL string) string {
	if len(c.FilterParameters) == 0 {
		return rawURL
	}

	queryStart := strings.IndexByte(rawURL, '?')
	if queryStart < 0 {
		return rawURL
	}

	query, fragment := rawURL[queryStart+1:], ""
	if hash := strings.IndexByte(query, '#'); hash >= 0 {
		query, fragment = query[:hash], query[hash:]
	}

	return rawURL[:queryStart+1] + c.filterQuery(query) + fragment
}

// filterQuery masks filtered keys of an application/x-www-form-urlencoded string.
func (c Configuration) filterQuery(query string) string {
	if len(c.FilterParameters) == 0 || query == "" {
		return query
	}

	pairs := strings.Split(query, "&")
	for i, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")

		name, err := url.QueryUnescape(key)
		if err != nil {
			name = key
		}

		if c.isFiltered(name) {
			pairs[i] = key + "=" + FilteredValue
		}
	}

	return strings.Join(pairs, "&")
}

// filterHeader returns h with the values of filtered names masked.
func (c Configuration) filterHeader(h Header) Header {
	if len(c.FilterParameters) == 0 {
		return h
	}

	filtered := make(Header, len(h))
	for i, field := range h {
		if c.isFiltered(field.Name) {
			field.Value = FilteredValue
		}

		filtered[i] = field
	}

	return filtered
}

// filterData masks filtered keys of form-encoded request data.
// Other payloads are returned unchanged.
func (c Configuration) filterData(data, contentType string) string {
	if len(c.FilterParameters) == 0 {
		return data
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if mediaType != "application/x-www-form-urlencoded" && !(mediaType == "" && looksFormEncoded(data)) {
		return data
	}

	return c.filterQuery(data)
}

// looksFormEncoded reports whether data has the shape key=value[&key=value...].
func looksFormEncoded(data string) bool {
	if data == "" || strings.ContainsAny(data, " \t\r\n{}[]\"") {
		return false
	}

	for _, pair := range strings.Split(data, "&") {
		if !strings.Contains(pair, "=") {
			return false
		}
	}

	return true
}
