package model

import "strings"

// YearSet is the ordered, non-empty set of 4-digit year strings that
// harvested links are filtered by.
type YearSet []string

// Contains reports whether year is part of the set.
func (ys YearSet) Contains(year string) bool {
	for _, y := range ys {
		if y == year {
			return true
		}
	}
	return false
}

// String returns the years separated by ", ".
func (ys YearSet) String() string {
	return strings.Join(ys, ", ")
}
