package querybuilder

import (
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// sqlWriter accumulates SQL text and numbers $n placeholders in argument
// order across every clause of one statement.
type sqlWriter struct {
	buf  strings.Builder
	args []any
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteByte('$')
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes a fragment whose ? markers are bound to args in order. Extra
// markers are written through untouched.
func (w *sqlWriter) expr(fragment string, args []any) {
	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && next < len(args) {
			w.bind(args[next])
			next++
			continue
		}
		w.buf.WriteByte(fragment[i])
	}
}

func (w *sqlWriter) list(items []string) {
	w.buf.WriteString(strings.Join(items, ", "))
}

func (w *sqlWriter) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			w.buf.WriteString(" WHERE ")
		} else {
			w.buf.WriteString(" AND ")
		}
		c.writeTo(w)
	}
}

func (w *sqlWriter) suffix(sql string) {
	if sql != "" {
		w.buf.WriteByte(' ')
		w.buf.WriteString(sql)
	}
}

// Condition is one predicate of a WHERE clause; conditions are ANDed.
type Condition interface {
	writeTo(w *sqlWriter)
}

type eq struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eq{column: column, value: value}
}

func (c eq) writeTo(w *sqlWriter) {
	w.buf.WriteString(c.column)
	w.buf.WriteString(" = ")
	w.bind(c.value)
}

type rawExpr struct {
	sql  string
	args []any
}

// Expr is a raw predicate with ? markers, e.g. Expr("status NOT IN (?, ?)", a, b).
func Expr(sql string, args ...any) Condition {
	return rawExpr{sql: sql, args: args}
}

func (c rawExpr) writeTo(w *sqlWriter) {
	w.expr(c.sql, c.args)
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
	suffix  string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

// Suffix appends a raw clause such as FOR UPDATE after LIMIT.
func (b *SelectBuilder) Suffix(sql string) *SelectBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, crerr.New("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, crerr.New("select table is required")
	}

	var w sqlWriter
	w.buf.WriteString("SELECT ")
	w.list(b.columns)
	w.buf.WriteString(" FROM ")
	w.buf.WriteString(b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.buf.WriteString(" ORDER BY ")
		w.list(b.orderBy)
	}
	if b.limit > 0 {
		w.buf.WriteString(" LIMIT ")
		w.buf.WriteString(strconv.Itoa(b.limit))
	}
	w.suffix(b.suffix)
	return w.buf.String(), w.args, nil
}

type InsertBuilder struct {
	table      string
	columns    []string
	rows       [][]any
	conflict   []string
	updateCols []string
	suffix     string
	err        error
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// OnConflictUpdate turns the insert into an upsert keyed on target that
// overwrites columns with the incoming row.
func (b *InsertBuilder) OnConflictUpdate(target []string, columns ...string) *InsertBuilder {
	b.conflict = append([]string(nil), target...)
	b.updateCols = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) fail(err error) *InsertBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.err != nil:
		return "", nil, b.err
	case strings.TrimSpace(b.table) == "":
		return "", nil, crerr.New("insert table is required")
	case len(b.columns) == 0:
		return "", nil, crerr.New("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, crerr.New("insert values are required")
	case len(b.conflict) > 0 && len(b.updateCols) == 0:
		return "", nil, crerr.Newf("upsert into %s has no columns to update", b.table)
	}

	var w sqlWriter
	w.buf.WriteString("INSERT INTO ")
	w.buf.WriteString(b.table)
	w.buf.WriteString(" (")
	w.list(b.columns)
	w.buf.WriteString(") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, crerr.Newf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.buf.WriteString(", ")
		}
		w.buf.WriteByte('(')
		for j, value := range row {
			if j > 0 {
				w.buf.WriteString(", ")
			}
			w.bind(value)
		}
		w.buf.WriteByte(')')
	}

	if len(b.conflict) > 0 {
		w.buf.WriteString(" ON CONFLICT (")
		w.list(b.conflict)
		w.buf.WriteString(") DO UPDATE SET ")
		for i, col := range b.updateCols {
			if i > 0 {
				w.buf.WriteString(", ")
			}
			w.buf.WriteString(col)
			w.buf.WriteString(" = EXCLUDED.")
			w.buf.WriteString(col)
		}
	}
	w.suffix(b.suffix)
	return w.buf.String(), w.args, nil
}

type assignment struct {
	column string
	sql    string
	args   []any
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, sql: "?", args: []any{value}})
	return b
}

// SetExpr assigns a raw expression with ? markers, e.g. "counter + ?".
func (b *UpdateBuilder) SetExpr(column, sql string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, sql: sql, args: args})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// Suffix appends a raw clause such as RETURNING; ? markers are not bound.
func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, crerr.New("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, crerr.New("update sets are required")
	}

	var w sqlWriter
	w.buf.WriteString("UPDATE ")
	w.buf.WriteString(b.table)
	w.buf.WriteString(" SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.buf.WriteString(", ")
		}
		w.buf.WriteString(s.column)
		w.buf.WriteString(" = ")
		w.expr(s.sql, s.args)
	}
	w.where(b.where)
	w.suffix(b.suffix)
	return w.buf.String(), w.args, nil
}
