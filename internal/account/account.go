// Package account implements the account-management decision: resolve the
// principal's directory groups and substitute the first mapped local identity.
package account

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/isometry/pam-ldap-map/internal/config"
	ldapclient "github.com/isometry/pam-ldap-map/internal/ldap"
	"github.com/isometry/pam-ldap-map/internal/remap"
)

// Host is the part of the authentication framework the module talks to.
type Host interface {
	// GetUser returns the principal being authenticated.
	GetUser() (string, error)
	// SetUser replaces the principal with a local identity.
	SetUser(user string) error
}

// Result is the outcome reported back to the host.
type Result int

const (
	Success Result = iota
	AuthErr
	ServiceErr
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case AuthErr:
		return "auth_err"
	case ServiceErr:
		return "service_err"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Directory resolves group memberships for a principal.
type Directory interface {
	ConnectAndBind(ctx context.Context) (*ldapclient.Session, error)
	SearchGroups(ctx context.Context, session *ldapclient.Session, principal string) (ldapclient.GroupSet, error)
}

// ConfigLoader loads the configuration file named by the module argument.
type ConfigLoader func(path string) (*config.Config, error)

// DirectoryFactory builds a Directory for one invocation.
type DirectoryFactory func(cfg *ldapclient.ConnectionConfig) (Directory, error)

// Module runs the account-management phase. The zero value is not usable;
// construct it with New.
type Module struct {
	loadConfig   ConfigLoader
	newDirectory DirectoryFactory
	diagnostics  io.Writer
}

// Option configures a Module.
type Option func(*Module)

// WithConfigLoader replaces config.Load.
func WithConfigLoader(loader ConfigLoader) Option {
	return func(m *Module) {
		m.loadConfig = loader
	}
}

// WithDirectoryFactory replaces the go-ldap backed directory.
func WithDirectoryFactory(factory DirectoryFactory) Option {
	return func(m *Module) {
		m.newDirectory = factory
	}
}

// WithDiagnostics sets where user-facing diagnostic lines are written.
// Defaults to os.Stdout.
func WithDiagnostics(w io.Writer) Option {
	return func(m *Module) {
		m.diagnostics = w
	}
}

// New creates a Module.
func New(opts ...Option) *Module {
	m := &Module{
		loadConfig:   config.Load,
		newDirectory: newLDAPDirectory,
		diagnostics:  os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func newLDAPDirectory(cfg *ldapclient.ConnectionConfig) (Directory, error) {
	dir, err := ldapclient.NewDirectory(cfg)
	if err != nil {
		return nil, err
	}
	return dir, nil
}

// AcctMgmt decides whether and how the principal known to host is remapped.
// args must hold exactly one element, the configuration file path. When
// silent is set no diagnostic lines are written.
func (m *Module) AcctMgmt(ctx context.Context, host Host, args []string, silent bool) Result {
	principal, err := host.GetUser()
	if err != nil {
		tflog.SubsystemWarn(ctx, Subsystem, "Unable to determine principal", map[string]any{
			"error": err.Error(),
		})
		return AuthErr
	}
	ctx = tflog.SubsystemSetField(ctx, Subsystem, "principal", principal)

	if len(args) != 1 {
		tflog.SubsystemError(ctx, Subsystem, "Expected exactly one module argument", map[string]any{
			"arg_count": len(args),
		})
		return ServiceErr
	}

	cfg, err := m.loadConfig(args[0])
	if err != nil {
		m.diagnose(silent, "ERROR: %v", err)
		tflog.SubsystemError(ctx, Subsystem, "Failed to load configuration", map[string]any{
			"path":  args[0],
			"error": err.Error(),
		})
		return ServiceErr
	}
	tflog.SubsystemDebug(ctx, Subsystem, "Configuration loaded", map[string]any{
		"path":     args[0],
		"mappings": cfg.Mappings.Len(),
	})

	dir, err := m.newDirectory(connectionConfig(cfg))
	if err != nil {
		tflog.SubsystemError(ctx, Subsystem, "Failed to create directory client", map[string]any{
			"error": err.Error(),
		})
		return ServiceErr
	}

	session, err := dir.ConnectAndBind(ctx)
	if err != nil {
		tflog.SubsystemError(ctx, Subsystem, "No directory server available", map[string]any{
			"error": err.Error(),
		})
		return ServiceErr
	}
	defer func() {
		if err := session.UnbindContext(ctx); err != nil {
			tflog.SubsystemWarn(ctx, Subsystem, "Unbind failed", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	groups, err := dir.SearchGroups(ctx, session, principal)
	if err != nil {
		tflog.SubsystemError(ctx, Subsystem, "Group search failed", map[string]any{
			"error": err.Error(),
		})
		return ServiceErr
	}

	target, ok := remap.Decide(groups, cfg.Mappings)
	if !ok {
		tflog.SubsystemInfo(ctx, Subsystem, "No mapping matched", map[string]any{
			"groups":        groups.Sorted(),
			"mapped_groups": cfg.Mappings.Groups(),
		})
		return AuthErr
	}

	m.diagnose(silent, "Mapping %s -> %s", principal, target)

	if err := host.SetUser(target); err != nil {
		tflog.SubsystemError(ctx, Subsystem, "Host rejected identity substitution", map[string]any{
			"target": target,
			"error":  err.Error(),
		})
		return ServiceErr
	}

	tflog.SubsystemInfo(ctx, Subsystem, "Principal remapped", map[string]any{
		"target": target,
	})
	return Success
}

func (m *Module) diagnose(silent bool, format string, args ...any) {
	if silent || m.diagnostics == nil {
		return
	}
	fmt.Fprintf(m.diagnostics, format+"\n", args...)
}

// connectionConfig translates the [ldap] section into client settings.
func connectionConfig(cfg *config.Config) *ldapclient.ConnectionConfig {
	c := ldapclient.DefaultConfig()
	c.LDAPURLs = ldapclient.SplitServerList(cfg.LDAP.URI)
	c.ConnectTimeout = cfg.LDAP.ConnectTimeout()
	c.Timeout = cfg.LDAP.OperationTimeout()
	c.Username = cfg.LDAP.User
	c.Password = cfg.LDAP.Pass
	c.UserBaseDN = cfg.LDAP.UserBaseDN
	c.GroupBaseDN = cfg.LDAP.GroupBaseDN
	c.UIDAttribute = cfg.LDAP.UIDAttribute
	c.GroupAttribute = cfg.LDAP.GroupAttribute
	return c
}
