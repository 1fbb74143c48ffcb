package pagination

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	params, err := Parse(url.Values{}, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != DefaultPageSize || params.Offset != 0 || params.PageToken != "" {
		t.Fatalf("unexpected defaults %+v", params)
	}
}

func TestParsePageSize(t *testing.T) {
	opts := Options{DefaultPageSize: 25, MaxPageSize: 40}
	values := url.Values{}
	values.Set("page_size", "30")

	params, err := Parse(values, opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != 30 {
		t.Fatalf("expected page size 30 got %d", params.PageSize)
	}

	values.Set("page_size", "400")
	params, err = Parse(values, opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != opts.MaxPageSize {
		t.Fatalf("expected page size clamped to %d got %d", opts.MaxPageSize, params.PageSize)
	}
}

func TestParseInvalidInput(t *testing.T) {
	cases := map[string]struct {
		values url.Values
		want   error
	}{
		"non numeric size": {url.Values{"page_size": {"abc"}}, ErrInvalidPageSize},
		"zero size":        {url.Values{"page_size": {"0"}}, ErrInvalidPageSize},
		"garbage token":    {url.Values{"page_token": {"%%%"}}, ErrInvalidPageToken},
		"non json token":   {url.Values{"page_token": {"bm90LWpzb24"}}, ErrInvalidPageToken},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(tc.values, Options{}); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSliceWalksAllPages(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	var collected []string
	token := ""
	for pages := 0; pages < 10; pages++ {
		req := httptest.NewRequest("GET", "/products?page_size=2&page_token="+url.QueryEscape(token), nil)
		params, err := FromRequest(req, Options{})
		if err != nil {
			t.Fatalf("FromRequest returned error: %v", err)
		}
		page, next := Slice(items, params)
		collected = append(collected, page...)
		if next == "" {
			break
		}
		token = next
	}
	if !reflect.DeepEqual(collected, items) {
		t.Fatalf("expected %v, got %v", items, collected)
	}
}

func TestSlicePastEnd(t *testing.T) {
	page, next := Slice([]int{1, 2}, Params{PageSize: 5, Offset: 7})
	if len(page) != 0 || next != "" {
		t.Fatalf("expected empty last page, got %v %q", page, next)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	if EncodeToken(0) != "" {
		t.Fatalf("expected empty token for offset 0")
	}
	offset, err := DecodeToken(EncodeToken(42))
	if err != nil || offset != 42 {
		t.Fatalf("expected 42, got %d (%v)", offset, err)
	}
}
