// Package pagination parses page_size/page_token query parameters and slices result lists.
package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is used when the client omits page_size.
	DefaultPageSize = 50
	// DefaultMaxPageSize caps page_size.
	DefaultMaxPageSize = 100

	pageSizeParam  = "page_size"
	pageTokenParam = "page_token"
)

// Params holds the parsed page window.
type Params struct {
	PageSize  int
	PageToken string
	Offset    int
}

// Options control how Parse behaves for a given handler.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

var (
	ErrInvalidPageSize  = errors.New("pagination: invalid page_size")
	ErrInvalidPageToken = errors.New("pagination: invalid page_token")
)

// FromRequest parses the supported query parameters from r.
func FromRequest(r *http.Request, opts Options) (Params, error) {
	if r == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	return Parse(r.URL.Query(), opts)
}

// Parse returns the normalised Params for values. Oversized pages are clamped rather than rejected.
func Parse(values url.Values, opts Options) (Params, error) {
	pageSize, err := parsePageSize(values.Get(pageSizeParam), opts)
	if err != nil {
		return Params{}, err
	}
	params := Params{PageSize: pageSize}

	if raw := strings.TrimSpace(values.Get(pageTokenParam)); raw != "" {
		offset, err := DecodeToken(raw)
		if err != nil {
			return Params{}, err
		}
		params.PageToken = raw
		params.Offset = offset
	}
	return params, nil
}

// Slice returns the window of items selected by params and the token for the following page,
// which is empty on the last page.
func Slice[T any](items []T, params Params) ([]T, string) {
	size := params.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	start := params.Offset
	if start < 0 || start >= len(items) {
		return []T{}, ""
	}
	end := start + size
	if end >= len(items) {
		return items[start:], ""
	}
	return items[start:end], EncodeToken(end)
}

func parsePageSize(raw string, opts Options) (int, error) {
	maxPageSize := opts.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	defaultPageSize := opts.DefaultPageSize
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultPageSize, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: must be an integer", ErrInvalidPageSize)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidPageSize)
	}
	if value > maxPageSize {
		value = maxPageSize
	}
	return value, nil
}
