package ldap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Directory performs the connect, bind and group search steps against one
// logical directory described by a ConnectionConfig. It holds no
// connections of its own; every session belongs to its caller.
type Directory struct {
	config *ConnectionConfig
	dialer Dialer
}

// NewDirectory creates a Directory for config.
func NewDirectory(config *ConnectionConfig, opts ...Option) (*Directory, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	d := &Directory{config: config}
	for _, opt := range opts {
		opt(d)
	}
	if d.dialer == nil {
		d.dialer = NewDialer(config.TLSConfig)
	}

	return d, nil
}

// ConnectAndBind walks the server list in order and returns a session for
// the first endpoint that accepts both the connection and the simple bind.
// Each endpoint is tried once; a failure or timeout moves to the next one.
func (d *Directory) ConnectAndBind(ctx context.Context) (*Session, error) {
	var errs []error

	for i, server := range d.config.LDAPURLs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		fields := map[string]any{
			"server":          server,
			"server_index":    i,
			"connect_timeout": d.config.ConnectTimeout.String(),
		}
		LogConnectionEvent(ctx, "connection_attempt", fields)

		session, err := d.connectSingle(ctx, server)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		return session, nil
	}

	LogConnectionEvent(ctx, "server_list_exhausted", map[string]any{
		"server_count": len(d.config.LDAPURLs),
	})

	return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

// connectSingle dials and binds one endpoint.
func (d *Directory) connectSingle(ctx context.Context, server string) (*Session, error) {
	start := time.Now()

	conn, err := d.dialer.Dial(ctx, server, d.config.ConnectTimeout)
	if err != nil {
		LogConnectionEvent(ctx, "connection_failed", map[string]any{
			"server":      server,
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, NewLDAPError("connect", server, err)
	}

	LogConnectionEvent(ctx, "connection_established", map[string]any{
		"server":      server,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	conn.SetTimeout(d.config.Timeout)

	fields := map[string]any{
		"server":   server,
		"username": d.config.Username,
	}
	if err := conn.Bind(d.config.Username, d.config.Password); err != nil {
		_ = conn.Close()
		bindErr := NewLDAPError("bind", server, err)
		fields["error"] = bindErr.Error()
		fields["error_category"] = string(bindErr.Category)
		LogConnectionEvent(ctx, "authentication_failed", fields)
		return nil, bindErr
	}

	LogConnectionEvent(ctx, "authentication_success", fields)
	return newSession(conn, server), nil
}

// SearchGroups looks up the principal's entry under UserBaseDN and returns
// the short-names of its groups under GroupBaseDN.
func (d *Directory) SearchGroups(ctx context.Context, session *Session, principal string) (GroupSet, error) {
	if !session.IsBound() {
		return nil, ErrSessionClosed
	}

	req := d.searchRequest(principal)
	fields := map[string]any{
		"server":     session.Server(),
		"base_dn":    req.BaseDN,
		"filter":     req.Filter,
		"attributes": req.Attributes,
		"time_limit": req.TimeLimit,
	}

	var groups GroupSet
	err := LogOperation(ctx, "search_groups", fields, func() error {
		result, err := session.conn.Search(req)
		if err != nil {
			wrapped := WrapError("search", session.Server(), err)
			LogLDAPError(ctx, "search", wrapped, map[string]any{
				"server": session.Server(),
				"filter": req.Filter,
			})
			return fmt.Errorf("%w: %w", ErrSearch, wrapped)
		}

		groups = ExtractGroupNames(result.Entries, d.config.GroupAttribute, d.config.GroupBaseDN)

		tflog.SubsystemDebug(ctx, Subsystem, "Group search completed", map[string]any{
			"entries_found": len(result.Entries),
			"group_count":   groups.Len(),
			"groups":        groups.Sorted(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// searchRequest builds the single subtree search used to resolve groups.
func (d *Directory) searchRequest(principal string) *ldap.SearchRequest {
	return ldap.NewSearchRequest(
		d.config.UserBaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // No size limit
		int(d.config.Timeout.Seconds()),
		false, // TypesOnly
		UserFilter(d.config.UIDAttribute, principal),
		[]string{d.config.GroupAttribute},
		nil, // Controls
	)
}

// validateConfig validates the connection configuration.
func validateConfig(config *ConnectionConfig) error {
	if len(config.LDAPURLs) == 0 {
		return errors.New("at least one LDAP URL must be specified")
	}

	if config.ConnectTimeout <= 0 {
		return errors.New("connect timeout must be positive")
	}

	if config.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if config.UserBaseDN == "" {
		return errors.New("user base DN must be specified")
	}

	if config.GroupBaseDN == "" {
		return errors.New("group base DN must be specified")
	}

	if config.UIDAttribute == "" || config.GroupAttribute == "" {
		return errors.New("uid and group attributes must be specified")
	}

	return nil
}
