//go:build unit

package queries_test

import (
	"encoding/base64"
	"testing"
	"time"

	"install-scheduler/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	t.Run("success: keyset survives encoding at microsecond precision", func(t *testing.T) {
		k := queries.Keyset{
			CreatedAt: time.Date(2030, 3, 1, 9, 30, 15, 123456789, time.UTC),
			ID:        uuid.New(),
		}

		got, err := queries.DecodeCursor(queries.EncodeCursor(k))
		require.NoError(t, err)
		assert.Equal(t, k.ID, got.ID)
		assert.Equal(t, k.CreatedAt.Truncate(time.Microsecond), got.CreatedAt)
	})

	t.Run("success: empty cursor means first page", func(t *testing.T) {
		got, err := queries.DecodeCursor(&queries.Cursor{})
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = queries.DecodeCursor(nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	encode := func(s string) *queries.Cursor {
		return &queries.Cursor{After: base64.RawURLEncoding.EncodeToString([]byte(s))}
	}
	invalid := map[string]*queries.Cursor{
		"not base64":     {After: "***"},
		"wrong version":  encode("v0:1:" + uuid.NewString()),
		"missing parts":  encode("v1:1"),
		"bad timestamp":  encode("v1:abc:" + uuid.NewString()),
		"bad identifier": encode("v1:1:not-a-uuid"),
	}
	for name, c := range invalid {
		t.Run("error: "+name, func(t *testing.T) {
			_, err := queries.DecodeCursor(c)
			assert.ErrorIs(t, err, queries.ErrInvalidCursor)
		})
	}
}

func TestValidateLimit(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{in: -5, want: queries.DefaultListLimit},
		{in: 0, want: queries.DefaultListLimit},
		{in: 1, want: 1},
		{in: queries.MaxListLimit, want: queries.MaxListLimit},
		{in: queries.MaxListLimit + 1, want: queries.MaxListLimit},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, queries.ValidateLimit(c.in), "limit %d", c.in)
	}
}
