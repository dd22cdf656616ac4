package ldap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// netDialer dials real LDAP servers with go-ldap.
type netDialer struct {
	tlsConfig *tls.Config
}

// NewDialer returns a Dialer that connects with ldap.DialURL. tlsConfig is
// used for ldaps:// endpoints; nil selects the defaults.
func NewDialer(tlsConfig *tls.Config) Dialer {
	if tlsConfig == nil {
		tlsConfig = DefaultConfig().TLSConfig
	}
	return &netDialer{tlsConfig: tlsConfig}
}

func (d *netDialer) Dial(ctx context.Context, endpoint string, timeout time.Duration) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := ldap.DialURL(endpoint,
		ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
		ldap.DialWithTLSConfig(d.tlsConfig.Clone()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %q: %w", endpoint, err)
	}

	return conn, nil
}
