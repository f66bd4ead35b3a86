package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MirrorTable is the table both SQL mirrors keep one JSON document per user in.
const MirrorTable = "mirror_documents"

// FieldUpdate is one dotted field path split into its keys, with its value
// encoded as JSON.
type FieldUpdate struct {
	Path  string
	Keys  []string
	Value []byte
}

// EncodeFields validates and encodes fields in path order.
func EncodeFields(fields map[string]any) ([]FieldUpdate, error) {
	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	updates := make([]FieldUpdate, 0, len(paths))
	for _, p := range paths {
		keys := strings.Split(p, ".")
		for _, k := range keys {
			if k == "" {
				return nil, fmt.Errorf("invalid field path %q", p)
			}
		}
		value, err := json.Marshal(fields[p])
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", p, err)
		}
		updates = append(updates, FieldUpdate{Path: p, Keys: keys, Value: value})
	}
	return updates, nil
}

// NestFields expands dotted paths into a nested JSON object, used as the
// initial document when a field update reaches a user without one.
func NestFields(updates []FieldUpdate) ([]byte, error) {
	root := map[string]any{}
	for _, u := range updates {
		node := root
		for _, k := range u.Keys[:len(u.Keys)-1] {
			child, ok := node[k].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[k] = child
			}
			node = child
		}
		node[u.Keys[len(u.Keys)-1]] = json.RawMessage(u.Value)
	}
	return json.Marshal(root)
}
