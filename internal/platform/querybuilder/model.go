package querybuilder

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
)

// Row models are structs whose exported fields carry a db tag. The
// "insertonly" option keeps a column out of upsert updates, for creation
// timestamps and similar:
//
//	CreatedAt time.Time `db:"created_at,insertonly"`

type modelField struct {
	index      int
	column     string
	insertOnly bool
}

var modelFields sync.Map // reflect.Type -> []modelField

func fieldsOf(typ reflect.Type) ([]modelField, error) {
	if cached, ok := modelFields.Load(typ); ok {
		return cached.([]modelField), nil
	}

	fields := make([]modelField, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, modelField{
			index:      i,
			column:     name,
			insertOnly: slices.Contains(strings.Split(opts, ","), "insertonly"),
		})
	}
	if len(fields) == 0 {
		return nil, crerr.Newf("%s has no db columns", typ)
	}

	modelFields.Store(typ, fields)
	return fields, nil
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, crerr.New("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, crerr.Newf("model must be a struct, got %s", value.Kind())
	}
	return value, nil
}

// InsertModels builds a multi-row insert from models of one struct type.
func InsertModels[M any](table string, models ...M) *InsertBuilder {
	b := InsertInto(table)
	for _, m := range models {
		value, err := structValue(m)
		if err != nil {
			return b.fail(err)
		}
		fields, err := fieldsOf(value.Type())
		if err != nil {
			return b.fail(err)
		}
		if len(b.columns) == 0 {
			columns := make([]string, 0, len(fields))
			for _, f := range fields {
				columns = append(columns, f.column)
			}
			b.Columns(columns...)
		}
		row := make([]any, 0, len(fields))
		for _, f := range fields {
			row = append(row, value.Field(f.index).Interface())
		}
		b.rows = append(b.rows, row)
	}
	return b
}

// UpsertModel builds an insert of model that, on a conflict over key,
// overwrites every column except key columns and insertonly columns.
func UpsertModel(table string, model any, key ...string) (string, []any, error) {
	value, err := structValue(model)
	if err != nil {
		return "", nil, err
	}
	fields, err := fieldsOf(value.Type())
	if err != nil {
		return "", nil, err
	}

	updates := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.insertOnly && !slices.Contains(key, f.column) {
			updates = append(updates, f.column)
		}
	}
	return InsertModels(table, model).OnConflictUpdate(key, updates...).ToSQL()
}
