package app

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadBaselineFromFile reads a tree previously written with --format json,
// either bare or wrapped in the full results object.
func LoadBaselineFromFile(path string) (Mapping, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, fmt.Errorf("cannot unmarshal %s file: %w", path, err)
	}

	if isResults(fields) {
		content = fields["tree"]
	}

	tree := Mapping{}
	if err := json.Unmarshal(content, &tree); err != nil {
		return nil, fmt.Errorf("cannot unmarshal %s file: %w", path, err)
	}

	return tree, nil
}

// isResults tells a wrapped results object from a bare tree, which may well
// have "tree" and "uniqueUrls" segments but never a number as a value.
func isResults(fields map[string]json.RawMessage) bool {
	_, hasTree := fields["tree"]
	var count float64

	return hasTree && json.Unmarshal(fields["uniqueUrls"], &count) == nil
}
