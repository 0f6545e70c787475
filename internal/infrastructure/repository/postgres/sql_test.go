package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsRetryableTxError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: true},
		{name: "wrapped serialization failure", err: fmt.Errorf("update week: %w", &pq.Error{Code: "40001"}), want: true},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: false},
		{name: "plain error", err: fakeErr("boom"), want: false},
		{name: "bind mismatch", err: fakeErr("pq: bind message supplies 2 parameters, but prepared statement \"\" requires 1 (08P01)"), want: true},
		{name: "unnamed statement missing", err: fakeErr("pq: unnamed prepared statement does not exist (26000)"), want: true},
		{name: "statement missing by code", err: fakeErr("pq: prepared statement missing (26000)"), want: true},
		{name: "missing relation", err: fakeErr("pq: relation weeks does not exist"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryableTxError(tc.err); got != tc.want {
				t.Fatalf("isRetryableTxError() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(fmt.Errorf("insert week: %w", &pq.Error{Code: "23505"})) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows not to be a unique violation")
	}
}

func TestIsNotFoundUnwraps(t *testing.T) {
	if !isNotFound(fmt.Errorf("get week: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
}

func TestLockSuffix(t *testing.T) {
	if got := lockSuffix(true); got != "FOR UPDATE" {
		t.Fatalf("unexpected lock suffix: %q", got)
	}
	if got := lockSuffix(false); got != "" {
		t.Fatalf("expected empty suffix outside transactions, got %q", got)
	}
}

func TestNullableConversions(t *testing.T) {
	rating := 4.25
	if got := floatPtr(nullFloat(&rating)); got == nil || *got != rating {
		t.Fatalf("expected rating to survive nullable conversion, got %v", got)
	}
	if got := floatPtr(nullFloat(nil)); got != nil {
		t.Fatalf("expected nil rating, got %v", *got)
	}
	if got := timePtr(nullTime(nil)); got != nil {
		t.Fatalf("expected nil time, got %v", *got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
