package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// jsonKind selects which bracket pair locateJSONSpan looks for.
type jsonKind int

const (
	jsonObject jsonKind = iota
	jsonArray
)

// locateJSONSpan finds the first candidate JSON fragment of the given
// kind embedded in text: the span from the first opening bracket to the
// last closing bracket. Models often wrap the requested JSON in prose,
// so the span is a candidate, not a guarantee; the parse stage decides.
func locateJSONSpan(text string, kind jsonKind) (string, bool) {
	open, close := "{", "}"
	if kind == jsonArray {
		open, close = "[", "]"
	}

	start := strings.Index(text, open)
	end := strings.LastIndex(text, close)
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseObject extracts and parses a JSON object from a model reply.
// When no brace span is present the whole text is tried as a fallback.
func parseObject(text string) (map[string]any, error) {
	candidate, found := locateJSONSpan(text, jsonObject)
	if !found {
		candidate = text
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return obj, nil
}

// parseStringList extracts and parses a JSON array from a model reply
// and coerces it to a string slice. A parseable reply that is not an
// array yields an empty slice rather than a wrong-shaped value.
func parseStringList(text string) ([]string, error) {
	candidate, found := locateJSONSpan(text, jsonArray)
	if !found {
		candidate = text
	}

	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items, ok := value.([]any)
	if !ok {
		return []string{}, nil
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
			continue
		}
		list = append(list, fmt.Sprint(item))
	}
	return list, nil
}

// stringField reads a field from a parsed object as a display string,
// tolerating models that report numbers instead of strings.
func stringField(obj map[string]any, key string) string {
	value, ok := obj[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// filterAllergens removes entries that textually contain any of the
// user's allergens, case-insensitively, preserving the original order
// of the remaining entries.
func filterAllergens(items, allergens []string) []string {
	if len(allergens) == 0 {
		return items
	}

	filtered := make([]string, 0, len(items))
	for _, item := range items {
		lowered := strings.ToLower(item)
		excluded := false
		for _, allergen := range allergens {
			allergen = strings.ToLower(strings.TrimSpace(allergen))
			if allergen != "" && strings.Contains(lowered, allergen) {
				excluded = true
				break
			}
		}
		if !excluded {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
