package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes common hand-editing mistakes in JSON documents:
// trailing commas, single quotes, unquoted keys, comments, unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// HJSONToJSON converts Human JSON (comments, unquoted keys and strings,
// optional commas) into standard JSON.
func HJSONToJSON(data []byte) ([]byte, error) {
	var generic interface{}
	if err := hjson.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return out, nil
}

// DecodeHJSON decodes an Hjson document into v. The document is normalised
// to JSON first so that v's json tags apply.
func DecodeHJSON(data []byte, v interface{}) error {
	normalised, err := HJSONToJSON(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(normalised, v)
}

// DecodeLenient tries progressively more forgiving decoders:
//  1. strict JSON
//  2. repaired JSON
//  3. Hjson
//
// The error from the strict attempt is reported if all three fail.
func DecodeLenient(data []byte, v interface{}) error {
	strictErr := json.Unmarshal(data, v)
	if strictErr == nil {
		return nil
	}

	if repaired, err := RepairJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		}
	}

	if err := DecodeHJSON(data, v); err == nil {
		return nil
	}

	return fmt.Errorf("DECODE_FAILED: %w", strictErr)
}
