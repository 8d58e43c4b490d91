package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go-adverse/scoring"
	"go-adverse/types"
)

// stripFences removes the markdown code fence (and json tag) models like to
// wrap their answers in.
func stripFences(content string) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "json") {
		s = strings.TrimSpace(s[len("json"):])
	}
	return s
}

// decodeList reads a JSON list of objects. A bare object that looks like an
// item is read as a one-element list, and an object wrapping a single list
// (e.g. {"results": [...]}) is unwrapped.
func decodeList(content string, isItem func(map[string]json.RawMessage) bool) ([]json.RawMessage, error) {
	raw := []byte(stripFences(content))

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("model reply is not JSON: %w", err)
	}
	if isItem(obj) {
		return []json.RawMessage{raw}, nil
	}
	if len(obj) == 1 {
		for _, v := range obj {
			if err := json.Unmarshal(v, &list); err == nil {
				return list, nil
			}
		}
	}
	return nil, fmt.Errorf("model reply is neither a list nor a single result")
}

func parseClassifications(content string) ([]types.ClassificationResult, error) {
	items, err := decodeList(content, func(obj map[string]json.RawMessage) bool {
		_, ok := obj["category"]
		return ok
	})
	if err != nil {
		return nil, err
	}

	results := make([]types.ClassificationResult, 0, len(items))
	for i, item := range items {
		var r types.ClassificationResult
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("classification %d: %w", i, err)
		}
		r.Category = canonicalCategory(r.Category)
		results = append(results, r)
	}
	return results, nil
}

func parseExtractions(content string) ([]types.EntityExtraction, error) {
	items, err := decodeList(content, func(obj map[string]json.RawMessage) bool {
		for k := range obj {
			if types.EntityType(k).Known() {
				return true
			}
		}
		return len(obj) == 0
	})
	if err != nil {
		return nil, err
	}

	results := make([]types.EntityExtraction, 0, len(items))
	for i, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			results = append(results, types.EntityExtraction{})
			continue
		}
		extraction, err := scoring.ParseExtraction(item)
		if err != nil {
			return nil, fmt.Errorf("extraction %d: %w", i, err)
		}
		results = append(results, extraction)
	}
	return results, nil
}

// canonicalCategory maps case and spacing variants onto the known categories.
// Unknown labels are kept as the model wrote them.
func canonicalCategory(c types.Category) types.Category {
	label := strings.Join(strings.Fields(string(c)), " ")
	for _, known := range types.AllCategories() {
		if strings.EqualFold(label, string(known)) {
			return known
		}
	}
	return types.Category(label)
}
