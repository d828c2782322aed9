// Package ingest loads the raw campus data files into the knowledge store
// and rebuilds the full-text index. Loaders are tolerant: source files come
// from different administrative tools with inconsistent key naming, so every
// field is resolved through a key-alias list and records missing required
// fields are skipped, not fatal.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// iterDicts walks a decoded JSON value and yields every object found, at any
// nesting depth.
func iterDicts(v any, visit func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		visit(t)
		for _, child := range t {
			iterDicts(child, visit)
		}
	case []any:
		for _, child := range t {
			iterDicts(child, visit)
		}
	}
}

// pickString returns the first non-empty string value under any of the given
// keys, matching exact first, then case-insensitively.
func pickString(d map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := d[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	lower := make(map[string]string, len(d))
	for k := range d {
		lower[strings.ToLower(k)] = k
	}
	for _, k := range keys {
		if orig, ok := lower[strings.ToLower(k)]; ok {
			if s, ok := d[orig].(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// pickStrings returns a string slice under any of the given keys. Non-string
// elements are skipped.
func pickStrings(d map[string]any, keys ...string) []string {
	for _, k := range keys {
		raw, ok := d[k].([]any)
		if !ok {
			lower := make(map[string]string, len(d))
			for dk := range d {
				lower[strings.ToLower(dk)] = dk
			}
			if orig, found := lower[strings.ToLower(k)]; found {
				raw, ok = d[orig].([]any)
			}
		}
		if !ok {
			continue
		}
		var out []string
		for _, e := range raw {
			if s, sok := e.(string); sok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// decodeFile reads and JSON-decodes one source file.
func decodeFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}
