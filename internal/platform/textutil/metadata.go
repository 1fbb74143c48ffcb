package textutil

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxMetadataEntries bounds how many caller-supplied entries travel with a submission.
	MaxMetadataEntries = 32
	// MaxMetadataKeyLength is the rune limit for keys; longer keys are dropped.
	MaxMetadataKeyLength = 64
	// MaxMetadataValueLength is the rune limit for values; longer values are truncated.
	MaxMetadataValueLength = 512
)

// SanitizeMetadata trims keys and values, drops empty or oversized keys and keys containing control
// characters, strips control characters from values and truncates long values. When more than
// MaxMetadataEntries keys survive, the lexically smallest are kept. Returns nil when nothing remains.
func SanitizeMetadata(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || utf8.RuneCountInString(trimmedKey) > MaxMetadataKeyLength {
			continue
		}
		if strings.IndexFunc(trimmedKey, unicode.IsControl) >= 0 {
			continue
		}
		result[trimmedKey] = truncateRunes(stripControl(strings.TrimSpace(value)), MaxMetadataValueLength)
	}
	if len(result) > MaxMetadataEntries {
		keys := make([]string, 0, len(result))
		for key := range result {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys[MaxMetadataEntries:] {
			delete(result, key)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func stripControl(value string) string {
	if strings.IndexFunc(value, unicode.IsControl) < 0 {
		return value
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}
