package validation

import (
	"sort"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Fields returns the violated field names in a stable order.
func (v Violations) Fields() []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// IndexRange checks 0 <= idx < n.
func IndexRange(field string, idx, n int, v Violations) {
	if idx < 0 || idx >= n {
		v[field] = "out_of_range"
	}
}

// Date checks a YYYY-MM-DD value.
func Date(field, value string, v Violations) {
	if !isDate(value) {
		v[field] = "invalid_date"
	}
}

// YearMonth checks a YYYY-MM value.
func YearMonth(field, value string, v Violations) {
	if len(value) != 7 || !isDate(value+"-01") {
		v[field] = "invalid_month"
	}
}

func isDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	month := (s[5]-'0')*10 + (s[6] - '0')
	day := (s[8]-'0')*10 + (s[9] - '0')
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}
