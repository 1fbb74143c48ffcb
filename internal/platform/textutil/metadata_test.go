package textutil

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeMetadata(t *testing.T) {
	t.Run("trims keys and values", func(t *testing.T) {
		input := map[string]string{
			" channel ": " web ",
			"referrer":  "newsletter\x00\n",
			"empty":     " ",
			" ":         "ignored",
			"bad\tkey":  "ignored",
		}

		expected := map[string]string{
			"channel":  "web",
			"referrer": "newsletter",
			"empty":    "",
		}

		actual := SanitizeMetadata(input)
		if !reflect.DeepEqual(actual, expected) {
			t.Fatalf("expected %#v got %#v", expected, actual)
		}
	})

	t.Run("returns nil for nil or empty input", func(t *testing.T) {
		if SanitizeMetadata(nil) != nil {
			t.Fatalf("expected nil for nil input")
		}
		if SanitizeMetadata(map[string]string{" ": "x"}) != nil {
			t.Fatalf("expected nil when every key is dropped")
		}
	})

	t.Run("enforces size limits", func(t *testing.T) {
		input := map[string]string{
			strings.Repeat("k", MaxMetadataKeyLength+1): "dropped",
			"note": strings.Repeat("é", MaxMetadataValueLength+10),
		}
		actual := SanitizeMetadata(input)
		if len(actual) != 1 {
			t.Fatalf("expected oversized key to be dropped, got %d entries", len(actual))
		}
		if n := utf8.RuneCountInString(actual["note"]); n != MaxMetadataValueLength {
			t.Fatalf("expected value truncated to %d runes, got %d", MaxMetadataValueLength, n)
		}
	})

	t.Run("keeps the smallest keys beyond the entry limit", func(t *testing.T) {
		input := make(map[string]string, MaxMetadataEntries+5)
		for i := 0; i < MaxMetadataEntries+5; i++ {
			input[fmt.Sprintf("k%02d", i)] = "v"
		}
		actual := SanitizeMetadata(input)
		if len(actual) != MaxMetadataEntries {
			t.Fatalf("expected %d entries, got %d", MaxMetadataEntries, len(actual))
		}
		if _, ok := actual[fmt.Sprintf("k%02d", MaxMetadataEntries)]; ok {
			t.Fatalf("expected keys past the limit to be dropped")
		}
	})
}
