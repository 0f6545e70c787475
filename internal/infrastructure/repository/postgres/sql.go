package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
)

const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqUniqueViolation      = "23505"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isRetryableTxError reports failures worth replaying the whole transaction
// for: serialization conflicts, deadlocks and statements invalidated by a
// pooling proxy between attempts.
func isRetryableTxError(err error) bool {
	switch pqCode(err) {
	case pqSerializationFailure, pqDeadlockDetected:
		return true
	}
	return isStaleStatementError(err)
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == pqUniqueViolation
}

func isStaleStatementError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "bind message supplies") && strings.Contains(msg, "requires"):
		return true
	case strings.Contains(msg, "unnamed prepared statement does not exist"):
		return true
	default:
		return strings.Contains(msg, "prepared statement") && strings.Contains(msg, "(26000)")
	}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func encodeDocument(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func decodeDocument(raw []byte, out any) error {
	return sonic.Unmarshal(raw, out)
}
