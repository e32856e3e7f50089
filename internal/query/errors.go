package query

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors accumulates per-field messages so a caller sees every
// problem in one pass, never just the first.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

func (v ValidationErrors) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation error"
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid parameters: " + strings.Join(fields, ", ")
}
