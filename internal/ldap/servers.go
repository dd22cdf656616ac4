package ldap

import "strings"

// SplitServerList splits a comma-separated endpoint list. Items are not
// trimmed and empty items are kept; they fail at dial time like any other
// unreachable endpoint.
func SplitServerList(uri string) []string {
	return strings.Split(uri, ",")
}
