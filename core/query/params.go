// Package query turns a raw entity list plus request parameters into a
// paginated response envelope. The stage order is fixed: search, filter,
// sort, total capture, then slicing; total must reflect the filtered set,
// not the page.
package query

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type Op string

const (
	// OpEq keeps items whose field equals the filter value.
	OpEq Op = "eq"
	// OpIn keeps items whose field is a member of the filter value set.
	OpIn Op = "in"
)

// Filter is one tagged filter expression. Value holds a scalar for OpEq and a
// slice for OpIn.
type Filter struct {
	Field string
	Op    Op
	Value any
}

type Params struct {
	Search    string
	Filters   []Filter
	SortBy    string
	SortOrder SortOrder
	Page      int
	PageSize  int
}

// Eq is shorthand for a scalar equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// In is shorthand for a set-membership filter.
func In(field string, values ...any) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}
