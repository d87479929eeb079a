package query

import (
	"fmt"

	"osprey-ehs/core/apierr"
)

type FieldType int

const (
	FieldString FieldType = iota
	FieldNumber
	FieldBool
	FieldTime
)

// Schema declares, per entity kind, which string fields participate in
// substring search and which fields may be filtered or sorted on. Params are
// validated against it before the pipeline runs, so an unknown field is a
// ValidationError instead of a silently empty result.
type Schema struct {
	Searchable []string
	Fields     map[string]FieldType
}

// Validate reports every violation at once.
func (s Schema) Validate(p Params) error {
	fe := apierr.FieldErrors{}
	for _, f := range p.Filters {
		if _, ok := s.Fields[f.Field]; !ok {
			fe.Add("filters", fmt.Sprintf("unknown filter field %q", f.Field))
			continue
		}
		switch f.Op {
		case OpEq, OpIn:
		default:
			fe.Add("filters", fmt.Sprintf("unknown operator %q on field %q", f.Op, f.Field))
		}
	}
	if p.SortBy != "" {
		if _, ok := s.Fields[p.SortBy]; !ok {
			fe.Add("sortBy", fmt.Sprintf("unknown sort field %q", p.SortBy))
		}
	}
	switch p.SortOrder {
	case "", SortAsc, SortDesc:
	default:
		fe.Add("sortOrder", fmt.Sprintf("invalid sort order %q", p.SortOrder))
	}
	if p.Page < 0 {
		fe.Add("page", "must not be negative")
	}
	if p.PageSize < 0 {
		fe.Add("pageSize", "must not be negative")
	}
	return fe.Err()
}
