package ldap

import (
	"context"
	"errors"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/mock"
)

// MockConn implements the Conn interface for testing.
type MockConn struct {
	mock.Mock
}

func (m *MockConn) Bind(username, password string) error {
	args := m.Called(username, password)
	return args.Error(0)
}

func (m *MockConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	result, ok := args.Get(0).(*ldap.SearchResult)
	if !ok {
		return nil, args.Error(1)
	}
	return result, args.Error(1)
}

func (m *MockConn) SetTimeout(timeout time.Duration) {
	m.Called(timeout)
}

func (m *MockConn) Unbind() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

var errConnectionRefused = errors.New("dial tcp: connection refused")

// endpointScript describes how a scripted endpoint behaves when dialed.
type endpointScript struct {
	dialErr error
	conn    Conn
}

// scriptedDialer replays per-endpoint behaviour and records every dial.
// Endpoints without a script refuse the connection.
type scriptedDialer struct {
	endpoints map[string]endpointScript
	dialed    []string
	timeouts  []time.Duration
}

func newScriptedDialer() *scriptedDialer {
	return &scriptedDialer{endpoints: make(map[string]endpointScript)}
}

func (d *scriptedDialer) refuse(endpoint string) *scriptedDialer {
	d.endpoints[endpoint] = endpointScript{dialErr: errConnectionRefused}
	return d
}

func (d *scriptedDialer) accept(endpoint string, conn Conn) *scriptedDialer {
	d.endpoints[endpoint] = endpointScript{conn: conn}
	return d
}

func (d *scriptedDialer) Dial(_ context.Context, endpoint string, timeout time.Duration) (Conn, error) {
	d.dialed = append(d.dialed, endpoint)
	d.timeouts = append(d.timeouts, timeout)

	script, ok := d.endpoints[endpoint]
	if !ok {
		return nil, errConnectionRefused
	}
	if script.dialErr != nil {
		return nil, script.dialErr
	}
	return script.conn, nil
}

// newBindingConn returns a MockConn that accepts the test bind credentials.
func newBindingConn() *MockConn {
	conn := &MockConn{}
	conn.On("SetTimeout", 5*time.Second).Return()
	conn.On("Bind", "cn=binder,dc=example", "secret").Return(nil)
	return conn
}

func testConnectionConfig(urls ...string) *ConnectionConfig {
	return &ConnectionConfig{
		LDAPURLs:       urls,
		ConnectTimeout: 2 * time.Second,
		Timeout:        5 * time.Second,
		Username:       "cn=binder,dc=example",
		Password:       "secret",
		UserBaseDN:     "ou=people,dc=example",
		GroupBaseDN:    "ou=groups,dc=example",
		UIDAttribute:   "uid",
		GroupAttribute: "memberOf",
	}
}

func userEntry(dn string, groups ...string) *ldap.Entry {
	return &ldap.Entry{
		DN: dn,
		Attributes: []*ldap.EntryAttribute{
			{Name: "memberOf", Values: groups},
		},
	}
}
