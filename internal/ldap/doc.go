/*
Package ldap resolves a principal's group memberships in an LDAP directory.

# Connection Management

A Directory is built from a ConnectionConfig whose LDAPURLs form a
failover list. ConnectAndBind tries each endpoint in order:

  - dial, bounded by ConnectTimeout
  - simple bind, bounded by Timeout
  - the first endpoint where both succeed yields a Session

There is no pooling, retry or backoff. A Session is owned by its caller
and must be released with Unbind.

# Group Resolution

SearchGroups runs a single subtree search for (<UIDAttribute>=<principal>)
below UserBaseDN, requesting only GroupAttribute. Every returned value
that ends with GroupBaseDN (ASCII case-insensitive) contributes the text
between "cn=" and the first comma to the resulting GroupSet.

# Error Handling

Failures are reported as LDAPError values carrying the operation, the
endpoint, the LDAP result code and an ErrorCategory. ErrUnavailable and
ErrSearch mark the two failures callers act on.

# Example Usage

	dir, err := ldap.NewDirectory(&ldap.ConnectionConfig{
		LDAPURLs:       ldap.SplitServerList("ldaps://a.example,ldaps://b.example"),
		ConnectTimeout: 2 * time.Second,
		Timeout:        5 * time.Second,
		Username:       "cn=binder,dc=example",
		Password:       "secret",
		UserBaseDN:     "ou=people,dc=example",
		GroupBaseDN:    "ou=groups,dc=example",
		UIDAttribute:   "uid",
		GroupAttribute: "memberOf",
	})
	if err != nil {
		return err
	}

	session, err := dir.ConnectAndBind(ctx)
	if err != nil {
		return err
	}
	defer session.Unbind()

	groups, err := dir.SearchGroups(ctx, session, "jdoe")
*/
package ldap
