//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Mutation edits a decoded JSON request body.
type Mutation func(m map[string]any)

// DtoMap round-trips v through JSON so tests can send bodies the typed DTO cannot express.
func DtoMap(t *testing.T, v any, muts ...Mutation) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, f := range muts {
		if f != nil {
			f(m)
		}
	}
	return m
}

// Field sets key, or deletes it when value is nil. Dotted keys address nested objects.
func Field(key string, value any) Mutation {
	return func(m map[string]any) {
		path := strings.Split(key, ".")
		for _, p := range path[:len(path)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				return
			}
			m = next
		}
		last := path[len(path)-1]
		if value == nil {
			delete(m, last)
			return
		}
		m[last] = value
	}
}
