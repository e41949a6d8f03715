package domain

import (
	"regexp"
	"strings"
)

// dataURIPrefix matches the declared header of an inline base64 image, whatever its subtype
var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// ImageData is an encoded image payload: an HTTP(S) URL or a base64 data URI
type ImageData string

// IsURL reports whether the payload is a remote image reference
func (d ImageData) IsURL() bool {
	lower := strings.ToLower(string(d))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Normalize returns the value sent to the vision endpoint. URLs pass through
// unchanged; inline payloads are re-wrapped as an image/jpeg data URI.
func (d ImageData) Normalize() (string, error) {
	raw := strings.TrimSpace(string(d))
	if raw == "" {
		return "", ErrInvalidImage
	}
	if d.IsURL() {
		return string(d), nil
	}

	body := dataURIPrefix.ReplaceAllString(raw, "")
	if body == "" {
		return "", ErrInvalidImage
	}
	return "data:image/jpeg;base64," + body, nil
}
