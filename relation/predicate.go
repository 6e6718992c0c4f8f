package relation

import (
	"fmt"
	"regexp"
)

// Where returns the rows whose value at key strictly equals val, projected
// onto fields. Rows missing the key never match, including when val is null.
func Where(fields []string, key string, val Value, t Table) Table {
	matched := make(Table, 0, len(t))
	for _, r := range t {
		if v, ok := r[key]; ok && Equal(v, val) {
			matched = append(matched, r)
		}
	}
	return Select(fields, matched)
}

// In returns the rows whose value at key is a member of vals, projected onto
// fields. Membership is tested under the given equality mode; pass Strict
// unless cross-kind numeric matches are explicitly wanted.
func In(fields []string, key string, vals []Value, t Table, mode EqualityMode) Table {
	matched := make(Table, 0, len(t))
	for _, r := range t {
		v, ok := r[key]
		if !ok {
			continue
		}
		for _, candidate := range vals {
			if mode.Equal(v, candidate) {
				matched = append(matched, r)
				break
			}
		}
	}
	return Select(fields, matched)
}

// Like returns the rows whose string value at key matches the regular
// expression pattern, projected onto fields. A missing key or a non-string
// value never matches. The pattern is compiled as written; callers anchor it
// explicitly when a full match is wanted.
func Like(fields []string, key, pattern string, t Table) (Table, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPattern, err)
	}
	matched := make(Table, 0, len(t))
	for _, r := range t {
		v, ok := r[key]
		if !ok || v.Kind != KindString {
			continue
		}
		if re.MatchString(v.S) {
			matched = append(matched, r)
		}
	}
	return Select(fields, matched), nil
}

// Exists reports whether any row strictly equals val at key.
func Exists(key string, val Value, t Table) bool {
	for _, r := range t {
		if v, ok := r[key]; ok && Equal(v, val) {
			return true
		}
	}
	return false
}

// Count returns the number of rows that survive projection onto field. With
// an empty field it counts every row holding at least one field.
func Count(field string, t Table) int {
	if field == "" {
		return len(Select(nil, t))
	}
	return len(Select([]string{field}, t))
}

// First returns the value of field in the first row of the table after
// projecting onto that field. It fails with ErrNotFound when the projection
// is empty.
func First(field string, t Table) (Value, error) {
	p := Select([]string{field}, t)
	if len(p) == 0 {
		return Value{}, ErrNotFound
	}
	return p[0][field], nil
}

// Last returns the value of field in the last row of the table after
// projecting onto that field. It fails with ErrNotFound when the projection
// is empty.
func Last(field string, t Table) (Value, error) {
	p := Select([]string{field}, t)
	if len(p) == 0 {
		return Value{}, ErrNotFound
	}
	return p[len(p)-1][field], nil
}
