package ldap

import (
	"slices"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// GroupSet is a set of group short-names. It never contains the empty string.
type GroupSet map[string]struct{}

// Add inserts name unless it is empty.
func (g GroupSet) Add(name string) {
	if name == "" {
		return
	}
	g[name] = struct{}{}
}

// Contains reports whether name is in the set.
func (g GroupSet) Contains(name string) bool {
	_, ok := g[name]
	return ok
}

// Len returns the number of groups.
func (g GroupSet) Len() int {
	return len(g)
}

// Sorted returns the names in byte order.
func (g GroupSet) Sorted() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ExtractGroupNames collects the short-names of every groupAttribute value
// on entries that lives under groupBaseDN.
//
// A value contributes when its lowercased form ends with the lowercased
// groupBaseDN. The short-name is the text between offset 3 (after a
// leading "cn=") and the first comma. The first RDN type is not checked.
func ExtractGroupNames(entries []*ldap.Entry, groupAttribute, groupBaseDN string) GroupSet {
	groups := make(GroupSet)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		for _, attr := range entry.Attributes {
			if !strings.EqualFold(attr.Name, groupAttribute) {
				continue
			}
			for _, value := range attr.Values {
				if name, ok := GroupShortName(value, groupBaseDN); ok {
					groups.Add(name)
				}
			}
		}
	}
	return groups
}

// GroupShortName returns the short-name of dn if dn is under groupBaseDN.
// ok is false when the suffix does not match or the first comma is at or
// before offset 3.
func GroupShortName(dn, groupBaseDN string) (name string, ok bool) {
	if !hasSuffixFold(dn, groupBaseDN) {
		return "", false
	}

	end := strings.IndexByte(dn, ',')
	if end <= 3 {
		return "", false
	}

	return dn[3:end], true
}

// hasSuffixFold is strings.HasSuffix with ASCII case folding.
func hasSuffixFold(s, suffix string) bool {
	if len(suffix) > len(s) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		if lowerASCII(tail[i]) != lowerASCII(suffix[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
