package scoring

import (
	"bytes"
	"encoding/json"

	"go-adverse/types"
)

// ParseExtraction decodes an entity extraction from JSON, insisting on an
// object whose values are lists of mentions. A null list is read as empty.
// Shape violations are reported as ErrInvalidInput.
func ParseExtraction(raw []byte) (types.EntityExtraction, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, &InputError{Field: "entities", Reason: "must be an object mapping entity types to lists"}
	}

	extraction := make(types.EntityExtraction, len(fields))
	for key, value := range fields {
		value = bytes.TrimSpace(value)
		if bytes.Equal(value, []byte("null")) {
			extraction[types.EntityType(key)] = []types.EntityMention{}
			continue
		}
		if len(value) == 0 || value[0] != '[' {
			return nil, &InputError{Field: key, Reason: "must be a list of mentions"}
		}
		var mentions []types.EntityMention
		if err := json.Unmarshal(value, &mentions); err != nil {
			return nil, &InputError{Field: key, Reason: "malformed mention: " + err.Error()}
		}
		if mentions == nil {
			mentions = []types.EntityMention{}
		}
		extraction[types.EntityType(key)] = mentions
	}

	if err := ValidateExtraction(extraction); err != nil {
		return nil, err
	}
	return extraction, nil
}
