package query

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Accessor resolves a named field on an item. The bool is false when the item
// has no such field; such items never match filters and sort last.
type Accessor[T any] func(item T, field string) (any, bool)

// Limits carries the pagination defaults from configuration.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Apply runs the full pipeline over items and returns the requested page plus
// pagination metadata. Params are assumed valid for the schema (see
// Schema.Validate); the schema is still consulted for type-aware comparison.
func Apply[T any](items []T, p Params, s Schema, get Accessor[T], lim Limits) ([]T, Pagination) {
	out := items

	if search := strings.TrimSpace(p.Search); search != "" {
		needle := strings.ToLower(search)
		kept := make([]T, 0, len(out))
		for _, item := range out {
			for _, field := range s.Searchable {
				v, ok := get(item, field)
				if !ok {
					continue
				}
				if strings.Contains(strings.ToLower(asString(v)), needle) {
					kept = append(kept, item)
					break
				}
			}
		}
		out = kept
	}

	for _, f := range p.Filters {
		ft := s.Fields[f.Field]
		kept := make([]T, 0, len(out))
		for _, item := range out {
			v, ok := get(item, f.Field)
			if ok && matchFilter(ft, v, f) {
				kept = append(kept, item)
			}
		}
		out = kept
	}

	if p.SortBy != "" {
		ft := s.Fields[p.SortBy]
		desc := p.SortOrder == SortDesc
		sort.SliceStable(out, func(i, j int) bool {
			vi, oki := get(out[i], p.SortBy)
			vj, okj := get(out[j], p.SortBy)
			if !oki || !okj {
				// items without the field sort last regardless of direction
				return oki && !okj
			}
			c := compareValues(ft, vi, vj)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(out)

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = lim.DefaultPageSize
	}
	if lim.MaxPageSize > 0 && pageSize > lim.MaxPageSize {
		pageSize = lim.MaxPageSize
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	pageItems := out[start:end]

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return pageItems, Pagination{
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

func matchFilter(ft FieldType, v any, f Filter) bool {
	switch f.Op {
	case OpEq:
		return equalValues(ft, v, f.Value)
	case OpIn:
		for _, want := range filterValues(f.Value) {
			if equalValues(ft, v, want) {
				return true
			}
		}
	}
	return false
}

func filterValues(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

func equalValues(ft FieldType, a, b any) bool {
	switch ft {
	case FieldNumber:
		af, aok := asNumber(a)
		bf, bok := asNumber(b)
		return aok && bok && af == bf
	case FieldBool:
		ab, aok := a.(bool)
		bb, bok := b.(bool)
		return aok && bok && ab == bb
	case FieldTime:
		at, aok := asTime(a)
		bt, bok := asTime(b)
		return aok && bok && at.Equal(bt)
	default:
		return asString(a) == asString(b)
	}
}

// compareValues orders a against b: -1, 0 or 1. String fields compare
// case-sensitively; number and time fields compare numerically.
func compareValues(ft FieldType, a, b any) int {
	switch ft {
	case FieldNumber:
		af, _ := asNumber(a)
		bf, _ := asNumber(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case FieldBool:
		ab, _ := a.(bool)
		bb, _ := b.(bool)
		switch {
		case !ab && bb:
			return -1
		case ab && !bb:
			return 1
		}
		return 0
	case FieldTime:
		at, _ := asTime(a)
		bt, _ := asTime(b)
		return at.Compare(bt)
	default:
		return strings.Compare(asString(a), asString(b))
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	// enum types are defined strings; %v yields the underlying value
	return fmt.Sprintf("%v", v)
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
