package pgconv

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var ErrInvalidFloat64Value = errors.New("invalid float64 value in pgtype.Numeric")

func UUIDPtrFromPgtype(pu pgtype.UUID) *uuid.UUID {
	if !pu.Valid {
		return nil
	}
	id := uuid.UUID(pu.Bytes)
	return &id
}

func UUIDToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func UUIDsFromPgtype(pus []pgtype.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(pus))
	for _, pu := range pus {
		if pu.Valid {
			out = append(out, uuid.UUID(pu.Bytes))
		}
	}
	return out
}

func UUIDsToPgtype(ids []uuid.UUID) []pgtype.UUID {
	out := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		out[i] = UUIDToPgtype(id)
	}
	return out
}

func Float64FromNumeric(pn pgtype.Numeric) (float64, error) {
	if !pn.Valid {
		return 0, nil
	}

	value, err := pn.Float64Value()
	if err != nil || !value.Valid {
		return 0, ErrInvalidFloat64Value
	}

	return value.Float64, nil
}

// DateFromPgtype normalizes a Postgres date to UTC midnight.
func DateFromPgtype(pd pgtype.Date) time.Time {
	if !pd.Valid {
		return time.Time{}
	}
	t := pd.Time
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func DateToPgtype(t time.Time) pgtype.Date {
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

func WeekdaysFromInt16(days []int16) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			out = append(out, time.Weekday(d))
		}
	}
	return out
}

func IntFromPgtype(pi pgtype.Int4) int {
	if !pi.Valid {
		return 0
	}
	return int(pi.Int32)
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
