package usecase

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for response recovery
var (
	// First "[" through the last "]", across newlines
	bracketArrayRegex = regexp.MustCompile(`(?s)\[.*\]`)

	// Interior of the first fenced block, optionally tagged json
	fencedBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
)

// parseStrategy recovers a JSON array from completion text, reporting false
// when the text holds nothing it can decode
type parseStrategy struct {
	name  string
	parse func(text string) ([]json.RawMessage, bool)
}

// responseStrategies run in order; the first success wins
var responseStrategies = []parseStrategy{
	{name: "bracket", parse: parseBracketedArray},
	{name: "fenced", parse: parseFencedBlock},
	{name: "direct", parse: parseDirect},
}

// parseBracketedArray decodes the widest [ ... ] region of the text
func parseBracketedArray(text string) ([]json.RawMessage, bool) {
	match := bracketArrayRegex.FindString(text)
	if match == "" {
		return nil, false
	}
	return decodeArray(match)
}

// parseFencedBlock decodes the interior of a ``` or ```json block
func parseFencedBlock(text string) ([]json.RawMessage, bool) {
	match := fencedBlockRegex.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}
	return decodeArray(match[1])
}

// parseDirect decodes the whole completion text
func parseDirect(text string) ([]json.RawMessage, bool) {
	return decodeArray(strings.TrimSpace(text))
}

// decodeArray accepts only a top-level JSON array
func decodeArray(candidate string) ([]json.RawMessage, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &elements); err != nil {
		return nil, false
	}
	if elements == nil {
		// literal null decodes without error
		return nil, false
	}
	return elements, true
}

// parseProductArray walks responseStrategies and reports which one succeeded
func parseProductArray(text string) ([]json.RawMessage, string, bool) {
	for _, strategy := range responseStrategies {
		if elements, ok := strategy.parse(text); ok {
			return elements, strategy.name, true
		}
	}
	return nil, "", false
}

// rawProduct is one element of the model's product array after field lookup
type rawProduct struct {
	Name       string
	Brand      string
	Confidence float64
	HasScore   bool
}

// decodeRawProduct reads one array element. Elements that are not JSON
// objects are reported as malformed.
func decodeRawProduct(element json.RawMessage) (rawProduct, bool) {
	var fields map[string]any
	if err := json.Unmarshal(element, &fields); err != nil || fields == nil {
		return rawProduct{}, false
	}

	product := rawProduct{
		Name:  firstNonEmptyString(fields, "name", "product"),
		Brand: firstNonEmptyString(fields, "brand"),
	}
	product.Confidence, product.HasScore = numericField(fields, "confidence")
	return product, true
}

// firstNonEmptyString returns the first key holding a non-blank string
func firstNonEmptyString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// numericField reads a number or numeric string. Zero counts as absent.
func numericField(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, v != 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, f != 0
	default:
		return 0, false
	}
}
