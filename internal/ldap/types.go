package ldap

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// ConnectionConfig holds everything needed to reach and query one logical directory.
type ConnectionConfig struct {
	// Connection settings
	LDAPURLs       []string      // Failover list, tried in order
	ConnectTimeout time.Duration // Bound for a single transport connection attempt
	Timeout        time.Duration // Bound for bind and search

	// Authentication settings
	Username string // Bind DN for simple bind
	Password string // Password for simple bind

	// Search settings
	UserBaseDN     string // Base DN of the principal search
	GroupBaseDN    string // Suffix group DNs must carry to be considered
	UIDAttribute   string // Attribute matched against the principal
	GroupAttribute string // Attribute listing group DNs on the user entry

	// TLS settings
	TLSConfig *tls.Config // Used for ldaps:// endpoints
}

// DefaultConfig returns a configuration with the default timeouts and TLS settings.
func DefaultConfig() *ConnectionConfig {
	return &ConnectionConfig{
		ConnectTimeout: 2 * time.Second,
		Timeout:        5 * time.Second,
		UIDAttribute:   "uid",
		GroupAttribute: "memberOf",
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// Conn is the subset of *ldap.Conn used by a Session.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	SetTimeout(timeout time.Duration)
	Unbind() error
	Close() error
}

var _ Conn = (*ldap.Conn)(nil)

// Dialer opens a transport connection to a single endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string, timeout time.Duration) (Conn, error)
}

// Option configures a Directory.
type Option func(*Directory)

// WithDialer replaces the network dialer.
func WithDialer(d Dialer) Option {
	return func(dir *Directory) {
		dir.dialer = d
	}
}
