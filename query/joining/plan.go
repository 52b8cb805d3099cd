// Package joining generates the SQL for feature queries that span a chain of joined tables.
//
// A QueryPlan names a root table and an ordered list of join steps. The
// planner turns it into a single SELECT whose rows, ordered so that every
// parent's children are contiguous, can be grouped back into nested features.
package joining

import (
	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/filter"
)

// UnboundedMaxFeatures is the MaxFeatures value meaning "no limit"
const UnboundedMaxFeatures = 1000000

// Surrogate column name prefixes in the select list
const (
	// ForeignIDPrefix names the id columns of join step i: FOREIGN_ID_<i>_<j>
	ForeignIDPrefix = "FOREIGN_ID"
	// ParentKeyPrefix names the root primary key columns: PARENT_TABLE_PKEY_<n>
	ParentKeyPrefix = "PARENT_TABLE_PKEY"
)

// Aliases reserved for derived tables
const (
	filterAlias   = "temp_alias_used_for_filter"
	countAlias    = "COUNT_TABLE"
	distinctAlias = "DISTINCT_TABLE"
	valuesAlias   = "mv"
)

// JoinDescriptor is one step of the join chain
type JoinDescriptor struct {
	// Table is the joined table
	Table string
	// ForeignKey is evaluated against this step's table
	ForeignKey filter.Expression
	// JoiningKey is evaluated against the previous step's table
	JoiningKey filter.Expression
	// SortBy orders the step's rows; empty means by primary key
	SortBy []filter.SortBy
	// IDs identify the step's rows; empty means the primary key
	IDs []string
	// Mapping is the mapping of Table, needed when a key of this step or the
	// next one references a multi-valued attribute
	Mapping *mapping.FeatureTypeMapping
}

// QueryPlan describes a joining query. TypeName is the table whose rows are
// returned; Joins lead from it, step by step, to the table the caller's
// filter and paging window apply to (the last step, or the root without joins).
type QueryPlan struct {
	// TypeName is the root table
	TypeName string
	// Mapping is the mapping of the last table, needed for nested attributes
	// and multi-valued side tables in the filter
	Mapping *mapping.FeatureTypeMapping
	// Properties restricts the root columns read; nil reads every column
	Properties []string
	Filter     filter.Filter
	SortBy     []filter.SortBy
	Joins      []JoinDescriptor
	// IDs are the root id columns; a plan with ids is id-bearing
	IDs         []string
	StartIndex  int
	MaxFeatures int
	// Denormalised roots produce several rows per feature, so paging goes through an id subquery
	Denormalised bool
	// Subset queries return only the matching rows, never the full row set of a matching id
	Subset bool
}

// Paged reports whether the plan asks for a page of results
func (p QueryPlan) Paged() bool {
	return p.StartIndex > 0 || p.bounded()
}

func (p QueryPlan) bounded() bool {
	return p.MaxFeatures > 0 && p.MaxFeatures < UnboundedMaxFeatures
}

// limit returns the row limit, -1 when unbounded
func (p QueryPlan) limit() int {
	if p.bounded() {
		return p.MaxFeatures
	}
	return -1
}

// HasIDColumn reports whether the plan carries explicit root ids
func (p QueryPlan) HasIDColumn() bool {
	return len(p.IDs) > 0
}

// Statement is a generated SQL statement with its bound parameters
type Statement struct {
	SQL  string
	Args []any
	// Joins are the plan's join steps with their ids resolved
	Joins []JoinDescriptor
	// Aliases holds the alias of each join step, empty when the table was not aliased
	Aliases []string
}
