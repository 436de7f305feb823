package gateway

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeFileName collapses each whitespace run into a single hyphen.
func SanitizeFileName(name string) string {
	return whitespace.ReplaceAllString(name, "-")
}

// ObjectKey builds "<epoch-millis>-<sanitized name>".
func ObjectKey(at time.Time, fileName string) string {
	return fmt.Sprintf("%d-%s", at.UnixMilli(), SanitizeFileName(fileName))
}

// EscapeKey percent-encodes a key for use as a single path segment.
func EscapeKey(key string) string {
	return strings.ReplaceAll(url.QueryEscape(key), "+", "%20")
}

// DecodeKey reverses EscapeKey for a key taken from a request path.
func DecodeKey(raw string) (string, error) {
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		return "", invalid("key", "Invalid image key")
	}
	return key, nil
}
