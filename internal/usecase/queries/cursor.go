package queries

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
	CursorVersionV1  = "v1"
)

type Cursor struct {
	After string `json:"after,omitempty"`
}

// Uses microsecond precision to align with PostgreSQL timestamp precision
func EncodeCursor(k Keyset) *Cursor {
	data := fmt.Sprintf("%s:%d:%s", CursorVersionV1, k.CreatedAt.UnixMicro(), k.ID.String())
	return &Cursor{After: base64.RawURLEncoding.EncodeToString([]byte(data))}
}

func DecodeCursor(c *Cursor) (*Keyset, error) {
	if c == nil || c.After == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(c.After)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	parts := strings.SplitN(string(decoded), ":", 3)
	if len(parts) != 3 || parts[0] != CursorVersionV1 {
		return nil, ErrInvalidCursor
	}

	micros, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Keyset{CreatedAt: time.UnixMicro(micros).UTC(), ID: id}, nil
}

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
