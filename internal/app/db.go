package app

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/box-league/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const maxTracedQueryLength = 512

var sqlWhitespace = regexp.MustCompile(`\s+`)

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := withApplicationName(cfg.DBURL, cfg.ServiceName)
	opts := []otelsql.Option{
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithQueryFormatter(traceQuery),
	}
	if name := databaseName(dsn); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(max(1, cfg.DBMaxOpenConns/2))
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping postgres")
	}
	return db, nil
}

// withApplicationName tags connections so they are identifiable in
// pg_stat_activity. Both URL and key=value DSNs are accepted; an explicit
// application_name wins.
func withApplicationName(dsn, name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(dsn, "application_name") {
		return dsn
	}

	if parsed, err := url.Parse(dsn); err == nil && parsed.Scheme != "" {
		query := parsed.Query()
		query.Set("application_name", name)
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}
	return strings.TrimSpace(dsn) + " application_name=" + name
}

func databaseName(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}

	for _, field := range strings.Fields(trimmed) {
		if value, ok := strings.CutPrefix(field, "dbname="); ok {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

// traceQuery collapses whitespace so multi-line statements render on one line
// in span attributes.
func traceQuery(query string) string {
	normalized := sqlWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
