package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"taskapp/internal/utils"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// statusCodeBands maps the fixed range tokens onto inclusive bounds.
var statusCodeBands = map[string][2]int{
	"1xx": {100, 199},
	"2xx": {200, 299},
	"3xx": {300, 399},
	"4xx": {400, 499},
	"5xx": {500, 599},
}

// Query is the validated, fully-built output of the engine: a SELECT with
// filters, order and pagination applied, and a matching COUNT without
// pagination.
type Query struct {
	Select  sq.SelectBuilder
	Count   sq.SelectBuilder
	Page    int
	PerPage int

	// Applied echoes the resolved filter/sort values actually used, with
	// defaults substituted, for client introspection.
	Applied map[string]any
}

// Build validates the raw parameters against the spec and, when they are
// well-formed, applies search, declared filters, custom filters, sort and
// pagination in that fixed order. On validation failure it returns every
// accumulated field error and no query is built.
func Build(spec *Spec, values url.Values) (*Query, ValidationErrors) {
	p := NewParams(aliasDateParams(spec, values))
	errs := ValidationErrors{}

	page := 1
	if raw := p.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("page", "must be a positive integer")
		} else {
			page = n
		}
	}

	perPage := spec.DefaultPerPage
	if raw := p.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil || n < 1:
			errs.Add("per_page", "must be a positive integer")
		case spec.MaxPerPage > 0 && n > spec.MaxPerPage:
			errs.Addf("per_page", "must not exceed %d", spec.MaxPerPage)
		default:
			perPage = n
		}
	}

	sortBy := spec.DefaultSort
	if raw := p.Get("sort_by"); raw != "" {
		if !spec.sortable(raw) {
			errs.Add("sort_by", "is not a sortable field")
		} else {
			sortBy = raw
		}
	}

	sortOrder := spec.DefaultOrder
	if sortOrder == "" {
		sortOrder = OrderDesc
	}
	if raw := strings.ToLower(p.Get("sort_order")); raw != "" {
		if raw != OrderAsc && raw != OrderDesc {
			errs.Add("sort_order", "must be asc or desc")
		} else {
			sortOrder = raw
		}
	}

	for _, f := range spec.Fields {
		f.validate(p, errs)
	}
	for _, cf := range spec.Custom {
		if cf.Validate != nil {
			cf.Validate(p, errs)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	applied := map[string]any{
		"sort_by":    sortBy,
		"sort_order": sortOrder,
	}

	conds := []sq.Sqlizer{}

	// 1. Free-text search: OR across searchable columns, grouped so it
	// composes with the AND filters below.
	if search := p.Get("search"); search != "" && len(spec.Searchable) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		or := sq.Or{}
		for _, col := range spec.Searchable {
			or = append(or, sq.Expr("LOWER("+col+") LIKE ?", pattern))
		}
		conds = append(conds, or)
		applied["search"] = search
	}

	// 2./3. Declared field filters, table-driven.
	for _, f := range spec.Fields {
		cond, ok := f.condition(p)
		if !ok {
			continue
		}
		conds = append(conds, cond)
		f.echo(p, applied)
	}

	sb := sq.Select(spec.Columns...).From(spec.Table)
	cb := sq.Select("COUNT(*)").From(spec.Table)
	if len(conds) > 0 {
		where := sq.And(conds)
		sb = sb.Where(where)
		cb = cb.Where(where)
	}

	// 4. Custom filters. They bind the count builder too so total stays
	// consistent with the page contents.
	for _, cf := range spec.Custom {
		if cf.Apply == nil {
			continue
		}
		sb = cf.Apply(sb, p)
		cb = cf.Apply(cb, p)
		for _, param := range cf.Params {
			if p.Has(param) {
				applied[param] = p.Get(param)
			}
		}
	}

	// 5. Sort, with a stable primary-key tiebreak so ties page
	// deterministically.
	sb = sb.OrderBy(sortBy + " " + strings.ToUpper(sortOrder))
	if sortBy != "id" {
		sb = sb.OrderBy("id DESC")
	}

	// 6. Paginate.
	offset := (page - 1) * perPage
	sb = sb.Limit(uint64(perPage)).Offset(uint64(offset))

	return &Query{
		Select:  sb,
		Count:   cb,
		Page:    page,
		PerPage: perPage,
		Applied: applied,
	}, nil
}

// aliasDateParams treats a generic start_date/end_date pair as the
// resource's primary timestamp range when the specific names are absent.
func aliasDateParams(spec *Spec, values url.Values) url.Values {
	if spec.TimeField == "" {
		return values
	}
	out := url.Values{}
	for k, v := range values {
		out[k] = v
	}
	fromKey := spec.TimeField + "_from"
	toKey := spec.TimeField + "_to"
	if out.Get(fromKey) == "" && strings.TrimSpace(out.Get("start_date")) != "" {
		out.Set(fromKey, out.Get("start_date"))
	}
	if out.Get(toKey) == "" && strings.TrimSpace(out.Get("end_date")) != "" {
		out.Set(toKey, out.Get("end_date"))
	}
	return out
}

func (f Field) validate(p Params, errs ValidationErrors) {
	switch f.Kind {
	case Exact:
		v := p.Get(f.Param)
		if v != "" && len(f.Values) > 0 && !contains(f.Values, v) {
			errs.Addf(f.Param, "must be one of %s", strings.Join(f.Values, ", "))
		}
	case Boolean:
		if v := p.Get(f.Param); v != "" {
			if _, err := ParseBool(v); err != nil {
				errs.Add(f.Param, "must be a boolean")
			}
		}
	case In:
		v := p.Get(f.Param)
		if v == "" || len(f.Values) == 0 {
			return
		}
		for _, part := range SplitList(v) {
			if !contains(f.Values, part) {
				errs.Addf(f.Param, "contains invalid value %q", part)
			}
		}
	case DateRange:
		fromKey, toKey := f.Param+"_from", f.Param+"_to"
		var from, to time.Time
		fromOK, toOK := false, false
		if v := p.Get(fromKey); v != "" {
			t, err := utils.ParseDate(v)
			if err != nil {
				errs.Add(fromKey, "must be a date in YYYY-MM-DD format")
			} else {
				from, fromOK = t, true
			}
		}
		if v := p.Get(toKey); v != "" {
			t, err := utils.ParseDate(v)
			if err != nil {
				errs.Add(toKey, "must be a date in YYYY-MM-DD format")
			} else {
				to, toOK = t, true
			}
		}
		if fromOK && toOK && to.Before(from) {
			errs.Addf(toKey, "must not be before %s", fromKey)
		}
	case StatusCodeRange:
		if v := strings.ToLower(p.Get(f.Param)); v != "" {
			if _, ok := statusCodeBands[v]; !ok {
				errs.Add(f.Param, "must be one of 1xx, 2xx, 3xx, 4xx, 5xx")
			}
		}
	}
}

func (f Field) condition(p Params) (sq.Sqlizer, bool) {
	switch f.Kind {
	case Exact:
		if v := p.Get(f.Param); v != "" {
			return sq.Eq{f.Column: v}, true
		}
	case Boolean:
		if v := p.Get(f.Param); v != "" {
			b, err := ParseBool(v)
			if err == nil {
				return sq.Eq{f.Column: b}, true
			}
		}
	case In:
		if v := p.Get(f.Param); v != "" {
			return sq.Eq{f.Column: SplitList(v)}, true
		}
	case Like:
		if v := p.Get(f.Param); v != "" {
			return sq.Like{f.Column: "%" + v + "%"}, true
		}
	case DateRange:
		var and sq.And
		if v := p.Get(f.Param + "_from"); v != "" {
			if t, err := utils.ParseDate(v); err == nil {
				and = append(and, sq.GtOrEq{f.Column: utils.DayStart(t)})
			}
		}
		if v := p.Get(f.Param + "_to"); v != "" {
			if t, err := utils.ParseDate(v); err == nil {
				and = append(and, sq.LtOrEq{f.Column: utils.DayEnd(t)})
			}
		}
		if len(and) > 0 {
			return and, true
		}
	case StatusCodeRange:
		if v := strings.ToLower(p.Get(f.Param)); v != "" {
			if band, ok := statusCodeBands[v]; ok {
				return sq.And{
					sq.GtOrEq{f.Column: band[0]},
					sq.LtOrEq{f.Column: band[1]},
				}, true
			}
		}
	}
	return nil, false
}

func (f Field) echo(p Params, applied map[string]any) {
	if f.Kind == DateRange {
		for _, key := range []string{f.Param + "_from", f.Param + "_to"} {
			if p.Has(key) {
				applied[key] = p.Get(key)
			}
		}
		return
	}
	applied[f.Param] = p.Get(f.Param)
}

// ParseBool coerces permissive truthy/falsy strings.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

// SplitList splits a comma-separated parameter into trimmed parts.
func SplitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
