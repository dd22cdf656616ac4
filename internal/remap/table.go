// Package remap decides which local identity, if any, a principal is remapped to.
package remap

import (
	"slices"
	"strings"
)

// rule maps a directory group short-name to a local identity.
type rule struct {
	group  string
	target string
}

// Table is an immutable list of rules ordered by Group in byte order.
// The order does not depend on how the rules were written in the
// configuration file.
type Table struct {
	rules []rule
}

// NewTable builds a Table from a group -> target map.
func NewTable(mappings map[string]string) Table {
	rules := make([]rule, 0, len(mappings))
	for group, target := range mappings {
		rules = append(rules, rule{group: group, target: target})
	}
	slices.SortFunc(rules, func(a, b rule) int {
		return strings.Compare(a.group, b.group)
	})
	return Table{rules: rules}
}

// Len returns the number of rules.
func (t Table) Len() int {
	return len(t.rules)
}

// Groups returns the group names in evaluation order.
func (t Table) Groups() []string {
	groups := make([]string, len(t.rules))
	for i, r := range t.rules {
		groups[i] = r.group
	}
	return groups
}
