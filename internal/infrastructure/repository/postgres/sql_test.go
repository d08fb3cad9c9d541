package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
)

func TestRoundLockKey(t *testing.T) {
	t.Parallel()

	base := season.Key{SeasonID: 1, Number: 1}
	if roundLockKey(base) != roundLockKey(season.Key{SeasonID: 1, Number: 1}) {
		t.Fatalf("lock key must be stable")
	}

	// These collided when both ids were truncated to int32.
	for _, other := range []season.Key{
		{SeasonID: 1<<32 + 1, Number: 1},
		{SeasonID: 1, Number: 1<<32 + 1},
		{SeasonID: 1, Number: 2},
		{SeasonID: 11, Number: 1},
	} {
		if roundLockKey(other) == roundLockKey(base) {
			t.Fatalf("lock key of %+v collides with %+v", other, base)
		}
	}
	// "1:11" and "11:1" must not share a key.
	if roundLockKey(season.Key{SeasonID: 1, Number: 11}) == roundLockKey(season.Key{SeasonID: 11, Number: 1}) {
		t.Fatalf("lock key ignores the separator")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: true},
		{name: "wrapped unique violation", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), want: true},
		{name: "foreign key violation", err: &pq.Error{Code: "23503"}, want: false},
		{name: "plain error", err: fmt.Errorf("boom"), want: false},
	}

	for _, tc := range tests {
		if got := isUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("other")) {
		t.Fatalf("unexpected not found")
	}
}

func TestNullableHelpers(t *testing.T) {
	t.Parallel()

	if nullableInt(sql.NullInt64{}) != nil {
		t.Fatalf("expected nil for invalid int")
	}
	if got := nullableInt(sql.NullInt64{Int64: 3, Valid: true}); got == nil || *got != 3 {
		t.Fatalf("unexpected int: %v", got)
	}
	now := time.Now()
	if got := nullableTime(sql.NullTime{Time: now, Valid: true}); got == nil || !got.Equal(now) {
		t.Fatalf("unexpected time: %v", got)
	}
}

func TestOverrideFromNull(t *testing.T) {
	t.Parallel()

	if got := overrideFromNull(sql.NullInt64{}); got.Set {
		t.Fatalf("expected unset override, got %+v", got)
	}
	got := overrideFromNull(sql.NullInt64{Int64: 0, Valid: true})
	if !got.Set || got.Value != 0 {
		t.Fatalf("expected explicit zero, got %+v", got)
	}
}

func TestNullInt64(t *testing.T) {
	t.Parallel()

	if nullInt64(0).Valid {
		t.Fatalf("expected zero id to be NULL")
	}
	if got := nullInt64(26); !got.Valid || got.Int64 != 26 {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestJSONMapRoundTrip(t *testing.T) {
	t.Parallel()

	if got := encodeJSONMap(nil); got != "{}" {
		t.Fatalf("expected empty object, got %q", got)
	}
	decoded := decodeJSONMap(encodeJSONMap(map[string]any{"round_number": 3}))
	if decoded["round_number"] != float64(3) {
		t.Fatalf("unexpected decoded payload: %+v", decoded)
	}
	if got := decodeJSONMap("not-json"); len(got) != 0 {
		t.Fatalf("expected empty map for invalid json, got %+v", got)
	}
}
