package util

import (
	"fmt"
	"regexp"
	"strings"
)

const placeholderPrefix = "Unnamed: "

var reSpaces = regexp.MustCompile(`\s+`)

func CleanHeader(input string) string {
	return strings.TrimSpace(input)
}

func CleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = CleanHeader(h)
	}
	return out
}

// PlaceholderHeader names a column whose header cell is empty.
func PlaceholderHeader(index int) string {
	return fmt.Sprintf("%s%d", placeholderPrefix, index)
}

func IsPlaceholderHeader(header string) bool {
	return strings.HasPrefix(header, placeholderPrefix)
}

func AllPlaceholders(headers []string) bool {
	for _, h := range headers {
		if !IsPlaceholderHeader(h) {
			return false
		}
	}
	return true
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func IsBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func StringPtr(v string) *string {
	return &v
}
