// Package snapshot wraps persisted state in a versioned envelope and
// migrates older blobs forward when they are read back.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the on-disk form of every local store value.
type Envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

// Migration rewrites data written at version N into version N+1.
type Migration func(data json.RawMessage) (json.RawMessage, error)

// Schema describes the current version of one store's payload and how to
// reach it from older versions. Migrations[n] upgrades n to n+1.
type Schema struct {
	Version    int
	Migrations map[int]Migration
}

// Encode marshals v at the schema's current version.
func (s Schema) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return json.Marshal(Envelope{SchemaVersion: s.Version, Data: data})
}

// Decode unwraps raw, upgrades it to the current version and unmarshals it
// into v. Blobs written before envelopes existed are treated as version 0.
func (s Schema) Decode(raw []byte, v any) error {
	data, version, err := unwrap(raw)
	if err != nil {
		return err
	}
	if version > s.Version {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", version, s.Version)
	}
	for version < s.Version {
		m, ok := s.Migrations[version]
		if !ok {
			return fmt.Errorf("no migration from snapshot version %d", version)
		}
		if data, err = m(data); err != nil {
			return fmt.Errorf("migrate snapshot from version %d: %w", version, err)
		}
		version++
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return nil
}

func unwrap(raw []byte) (json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, 0, fmt.Errorf("empty snapshot")
	}
	if trimmed[0] != '{' {
		return json.RawMessage(trimmed), 0, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot envelope: %w", err)
	}
	versionRaw, hasVersion := probe["schemaVersion"]
	dataRaw, hasData := probe["data"]
	if !hasVersion || !hasData {
		return json.RawMessage(trimmed), 0, nil
	}
	var version int
	if err := json.Unmarshal(versionRaw, &version); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot version: %w", err)
	}
	return dataRaw, version, nil
}
