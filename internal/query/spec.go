package query

import (
	"net/url"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Kind enumerates the comparison kinds a declared filter field can use.
type Kind int

const (
	Exact Kind = iota
	Boolean
	In
	Like
	DateRange
	StatusCodeRange
)

// Field declares one filterable query parameter and how it maps onto a
// column. For DateRange the Param is a base name; the engine reads
// "<Param>_from" and "<Param>_to".
type Field struct {
	Param  string
	Column string
	Kind   Kind

	// Values restricts Exact/In fields to an allowed set when non-empty.
	Values []string
}

// CustomFilter is a resource-specific predicate that the rule table cannot
// express. Validate accumulates field errors; Apply mutates the builder
// exactly once and must not touch columns already bound by declared fields.
type CustomFilter struct {
	Params   []string
	Validate func(p Params, errs ValidationErrors)
	Apply    func(sb sq.SelectBuilder, p Params) sq.SelectBuilder
}

// Spec is the immutable per-resource filter configuration, defined once at
// startup.
type Spec struct {
	Table      string
	Columns    []string
	Searchable []string
	Fields     []Field
	Sortable   []string

	DefaultSort  string
	DefaultOrder string

	DefaultPerPage int
	MaxPerPage     int

	// TimeField names the DateRange field that the generic
	// start_date/end_date pair aliases onto (usually "created_at").
	TimeField string

	Custom []CustomFilter
}

func (s *Spec) sortable(col string) bool {
	for _, c := range s.Sortable {
		if c == col {
			return true
		}
	}
	return false
}

// Params is the raw request parameter bag. Values are trimmed on access;
// absent and empty parameters are equivalent.
type Params struct {
	values url.Values
}

func NewParams(values url.Values) Params {
	return Params{values: values}
}

func (p Params) Get(key string) string {
	return strings.TrimSpace(p.values.Get(key))
}

func (p Params) Has(key string) bool {
	return p.Get(key) != ""
}

// Keys returns the present (non-empty) parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		if p.Has(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
