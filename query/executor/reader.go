package executor

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/satishbabariya/joinsql/query/joining"
)

// FeatureReader streams the rows of one executed statement
type FeatureReader struct {
	id      string
	rows    *sql.Rows
	columns []string
	binary  []bool
	joins   []joining.JoinDescriptor
	current Record
	err     error
	closed  bool
}

func newFeatureReader(id string, rows *sql.Rows, joins []joining.JoinDescriptor) (*FeatureReader, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	return &FeatureReader{id: id, rows: rows, columns: columns, binary: binaryColumns(rows, len(columns)), joins: joins}, nil
}

func binaryColumns(rows *sql.Rows, n int) []bool {
	binary := make([]bool, n)
	types, err := rows.ColumnTypes()
	if err != nil {
		return binary
	}
	for i, t := range types {
		switch strings.ToUpper(t.DatabaseTypeName()) {
		case "BLOB", "BYTEA", "BINARY", "VARBINARY", "GEOMETRY", "LONGBLOB", "IMAGE":
			binary[i] = true
		}
	}
	return binary
}

// StatementID identifies the executed statement in log records
func (r *FeatureReader) StatementID() string {
	return r.id
}

// Columns returns the result column names
func (r *FeatureReader) Columns() []string {
	return r.columns
}

// Joins returns the resolved join steps of the statement
func (r *FeatureReader) Joins() []joining.JoinDescriptor {
	return r.joins
}

// Next advances to the next row. It returns false at the end of the result
// or on error, which Err reports.
func (r *FeatureReader) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	if !r.rows.Next() {
		r.err = r.rows.Err()
		return false
	}

	values := make([]any, len(r.columns))
	valuePtrs := make([]any, len(r.columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := r.rows.Scan(valuePtrs...); err != nil {
		r.err = fmt.Errorf("failed to scan row: %w", err)
		return false
	}
	for i, v := range values {
		// drivers hand text back as bytes
		if b, ok := v.([]byte); ok && !r.binary[i] {
			values[i] = string(b)
		}
	}
	r.current = Record{columns: r.columns, values: values}
	return true
}

// Row returns the current row
func (r *FeatureReader) Row() Record {
	return r.current
}

// Err returns the error that stopped iteration, if any
func (r *FeatureReader) Err() error {
	return r.err
}

// Close releases the underlying rows
func (r *FeatureReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rows.Close()
}

// ReadAll drains the reader and closes it
func (r *FeatureReader) ReadAll() ([]Record, error) {
	defer r.Close()
	var records []Record
	for r.Next() {
		records = append(records, r.current)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Record is one result row
type Record struct {
	columns []string
	values  []any
}

// Get returns the value of column name
func (r Record) Get(name string) (any, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Attributes returns the feature columns, leaving out the surrogate
// foreign id and parent key columns
func (r Record) Attributes() map[string]any {
	out := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		if isSurrogate(c) {
			continue
		}
		out[c] = r.values[i]
	}
	return out
}

// ForeignIDs returns the id values of join step, in id order
func (r Record) ForeignIDs(step int) []any {
	return r.surrogates(func(ord int) string { return joining.ForeignIDColumn(step, ord) })
}

// ParentKeys returns the root primary key values carried for the caller
func (r Record) ParentKeys() []any {
	return r.surrogates(joining.ParentKeyColumn)
}

func (r Record) surrogates(name func(ordinal int) string) []any {
	var out []any
	for ord := 0; ; ord++ {
		v, ok := r.Get(name(ord))
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func isSurrogate(column string) bool {
	return strings.HasPrefix(column, joining.ForeignIDPrefix+"_") || strings.HasPrefix(column, joining.ParentKeyPrefix+"_")
}

// Feature groups the consecutive rows sharing the ids of one join step
type Feature struct {
	Key  []any
	Rows []Record
}

// GroupByStep groups records by the foreign ids of join step. Rows of one
// feature are contiguous in a joining select, so only neighbours are compared.
func GroupByStep(records []Record, step int) []Feature {
	var features []Feature
	for _, rec := range records {
		key := rec.ForeignIDs(step)
		if n := len(features); n > 0 && reflect.DeepEqual(features[n-1].Key, key) {
			features[n-1].Rows = append(features[n-1].Rows, rec)
			continue
		}
		features = append(features, Feature{Key: key, Rows: []Record{rec}})
	}
	return features
}
