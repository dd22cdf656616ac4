package account_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	this "github.com/isometry/pam-ldap-map/internal/account"
	ldapclient "github.com/isometry/pam-ldap-map/internal/ldap"
)

// fakeHost records identity substitutions.
type fakeHost struct {
	user       string
	getUserErr error
	setUserErr error
	setCalls   []string
}

func (h *fakeHost) GetUser() (string, error) {
	if h.getUserErr != nil {
		return "", h.getUserErr
	}
	return h.user, nil
}

func (h *fakeHost) SetUser(user string) error {
	h.setCalls = append(h.setCalls, user)
	return h.setUserErr
}

// mockConn implements ldapclient.Conn.
type mockConn struct {
	mock.Mock
}

func (m *mockConn) Bind(username, password string) error {
	return m.Called(username, password).Error(0)
}

func (m *mockConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	args := m.Called(req)
	result, _ := args.Get(0).(*ldap.SearchResult)
	return result, args.Error(1)
}

func (m *mockConn) SetTimeout(timeout time.Duration) {
	m.Called(timeout)
}

func (m *mockConn) Unbind() error {
	return m.Called().Error(0)
}

func (m *mockConn) Close() error {
	return m.Called().Error(0)
}

// lastFilter returns the filter of the most recent search request.
func (m *mockConn) lastFilter() string {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "Search" {
			return m.Calls[i].Arguments.Get(0).(*ldap.SearchRequest).Filter
		}
	}
	return ""
}

var errRefused = errors.New("dial tcp: connection refused")

// endpointDialer hands out scripted connections per endpoint; any other
// endpoint refuses.
type endpointDialer struct {
	conns  map[string]ldapclient.Conn
	dialed []string
}

func (d *endpointDialer) Dial(_ context.Context, endpoint string, _ time.Duration) (ldapclient.Conn, error) {
	d.dialed = append(d.dialed, endpoint)
	if conn, ok := d.conns[endpoint]; ok {
		return conn, nil
	}
	return nil, errRefused
}

func directoryWith(dialer ldapclient.Dialer) this.DirectoryFactory {
	return func(cfg *ldapclient.ConnectionConfig) (this.Directory, error) {
		return ldapclient.NewDirectory(cfg, ldapclient.WithDialer(dialer))
	}
}

// boundConn accepts the test credentials and answers every search with a
// single user entry carrying groups. It expects exactly one unbind.
func boundConn(groups ...string) *mockConn {
	conn := &mockConn{}
	conn.On("SetTimeout", 5*time.Second).Return()
	conn.On("Bind", "cn=binder,dc=example", "secret").Return(nil)
	conn.On("Search", mock.Anything).Return(&ldap.SearchResult{
		Entries: []*ldap.Entry{{
			DN: "uid=jdoe,ou=people,dc=example",
			Attributes: []*ldap.EntryAttribute{
				{Name: "memberOf", Values: groups},
			},
		}},
	}, nil)
	conn.On("Unbind").Return(nil).Once()
	return conn
}

const configTemplate = `
[ldap]
uri = %q
user = "cn=binder,dc=example"
pass = "secret"
user_base_dn = "ou=people,dc=example"
group_base_dn = "ou=groups,dc=example"
uid_attribute = "uid"
group_attribute = "memberOf"

[mappings]
%s
`

func writeConfig(t *testing.T, uri, mappings string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pam_ldap_map.toml")
	content := fmt.Sprintf(configTemplate, uri, mappings)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
