package remap

// Membership reports whether a principal belongs to a group.
type Membership interface {
	Contains(group string) bool
}

// Decide returns the target of the first rule, in table order, whose group
// is in groups. ok is false when no rule matches.
func Decide(groups Membership, table Table) (target string, ok bool) {
	if groups == nil {
		return "", false
	}
	for _, r := range table.rules {
		if groups.Contains(r.group) {
			return r.target, true
		}
	}
	return "", false
}
