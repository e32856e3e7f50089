package query

import (
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"taskapp/internal/utils"
)

// timeNow is stubbed in tests that assert overdue SQL arguments.
var timeNow = utils.NowUTC

// CompletedFlag filters on whether the completion timestamp is set:
// true means IS NOT NULL, false means IS NULL.
func CompletedFlag(param, column string) CustomFilter {
	return CustomFilter{
		Params:   []string{param},
		Validate: booleanValidator(param),
		Apply: func(sb sq.SelectBuilder, p Params) sq.SelectBuilder {
			v := p.Get(param)
			if v == "" {
				return sb
			}
			b, err := ParseBool(v)
			if err != nil {
				return sb
			}
			if b {
				return sb.Where(sq.NotEq{column: nil})
			}
			return sb.Where(sq.Eq{column: nil})
		},
	}
}

// OverdueFlag filters tasks past their due date that are still open.
// false is the clean complement: rows with no due date count as not
// overdue.
func OverdueFlag(param, dueColumn, doneColumn string) CustomFilter {
	return CustomFilter{
		Params:   []string{param},
		Validate: booleanValidator(param),
		Apply: func(sb sq.SelectBuilder, p Params) sq.SelectBuilder {
			v := p.Get(param)
			if v == "" {
				return sb
			}
			b, err := ParseBool(v)
			if err != nil {
				return sb
			}
			now := timeNow()
			if b {
				return sb.Where(sq.And{
					sq.Lt{dueColumn: now},
					sq.Eq{doneColumn: nil},
				})
			}
			return sb.Where(sq.Or{
				sq.Eq{dueColumn: nil},
				sq.GtOrEq{dueColumn: now},
				sq.NotEq{doneColumn: nil},
			})
		},
	}
}

// NumericRange bounds a numeric column with independent lower/upper
// parameters; either may be supplied alone. A violated ordering is
// reported on the upper-bound parameter.
func NumericRange(column, minParam, maxParam string) CustomFilter {
	return CustomFilter{
		Params: []string{minParam, maxParam},
		Validate: func(p Params, errs ValidationErrors) {
			minVal, minOK := nonNegativeInt(p, minParam, errs)
			maxVal, maxOK := nonNegativeInt(p, maxParam, errs)
			if minOK && maxOK && minVal > maxVal {
				errs.Addf(maxParam, "must not be less than %s", minParam)
			}
		},
		Apply: func(sb sq.SelectBuilder, p Params) sq.SelectBuilder {
			if v, ok := parseInt(p.Get(minParam)); ok {
				sb = sb.Where(sq.GtOrEq{column: v})
			}
			if v, ok := parseInt(p.Get(maxParam)); ok {
				sb = sb.Where(sq.LtOrEq{column: v})
			}
			return sb
		},
	}
}

func booleanValidator(param string) func(Params, ValidationErrors) {
	return func(p Params, errs ValidationErrors) {
		if v := p.Get(param); v != "" {
			if _, err := ParseBool(v); err != nil {
				errs.Add(param, "must be a boolean")
			}
		}
	}
}

func nonNegativeInt(p Params, param string, errs ValidationErrors) (int64, bool) {
	raw := p.Get(param)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		errs.Add(param, "must be a non-negative integer")
		return 0, false
	}
	return v, true
}

func parseInt(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
