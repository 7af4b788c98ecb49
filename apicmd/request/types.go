package request

import (
	"strings"

	"github.com/go-analyze/bulk"
)

// Method is an HTTP request method.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// Methods lists every supported method in display order.
var Methods = []Method{
	MethodGet, MethodPost, MethodPut, MethodPatch,
	MethodDelete, MethodHead, MethodOptions,
}

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// HasBody reports whether requests with this method carry a body.
// GET and HEAD never do, regardless of the configured body variant.
func (m Method) HasBody() bool {
	return m != MethodGet && m != MethodHead
}

// Header is a single HTTP header preserving the user-supplied name casing.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Headers is an ordered header list with case-insensitive name matching.
// Order is emission order; names are unique case-insensitively via Set.
type Headers []Header

// Get returns the first header value with the given name (case-insensitive).
// Returns empty string if not found.
func (h *Headers) Get(name string) string {
	for _, hdr := range *h {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value
		}
	}
	return ""
}

// Has reports whether a header with the given name is present (case-insensitive).
func (h *Headers) Has(name string) bool {
	for _, hdr := range *h {
		if strings.EqualFold(hdr.Name, name) {
			return true
		}
	}
	return false
}

// Set sets or replaces the first header with the given name (case-insensitive).
// If not found, appends a new header.
func (h *Headers) Set(name, value string) {
	for i, hdr := range *h {
		if strings.EqualFold(hdr.Name, name) {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, Header{Name: name, Value: value})
}

// SetDefault appends the header only when no header with the same name
// exists yet (case-insensitive).
func (h *Headers) SetDefault(name, value string) {
	if !h.Has(name) {
		*h = append(*h, Header{Name: name, Value: value})
	}
}

// Remove removes all headers with the given name (case-insensitive).
func (h *Headers) Remove(name string) {
	*h = bulk.SliceFilterInPlace(func(hdr Header) bool {
		return !strings.EqualFold(hdr.Name, name)
	}, *h)
}

// Prepared is the fully resolved, ready-to-transmit form of a request.
// Ephemeral: produced by Build, consumed by the transport, never persisted.
type Prepared struct {
	Method  Method
	URL     string // fully resolved, query string included
	Headers Headers
	Body    []byte // nil when the request carries no body
}
