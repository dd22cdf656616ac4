package account

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/hashicorp/terraform-plugin-log/tfsdklog"

	ldapclient "github.com/isometry/pam-ldap-map/internal/ldap"
)

const (
	// LoggerName is the root logger name.
	LoggerName = "pam_ldap_map"

	// Subsystem is the tflog subsystem used by this package.
	Subsystem = "account"

	// Environment variables selecting log levels. Unset or unrecognised
	// values disable logging.
	EnvLog        = "PAM_LDAP_MAP_LOG"
	EnvLogAccount = "PAM_LDAP_MAP_LOG_ACCOUNT"
	EnvLogLDAP    = "PAM_LDAP_MAP_LOG_LDAP"
)

// NewLoggingContext returns ctx carrying a JSON root logger on stderr plus
// the account and ldap subsystems, all tagged with a fresh invocation_id.
func NewLoggingContext(ctx context.Context) context.Context {
	level := levelFromEnv(EnvLog, hclog.Off)

	ctx = tfsdklog.NewRootProviderLogger(ctx,
		tfsdklog.WithLogName(LoggerName),
		tfsdklog.WithLevel(level),
		tfsdklog.WithoutLocation(),
	)

	return initializeLogging(ctx, level)
}

// initializeLogging registers the subsystems on an existing root logger.
func initializeLogging(ctx context.Context, level hclog.Level) context.Context {
	ctx = tflog.NewSubsystem(ctx, Subsystem,
		tflog.WithLevel(levelFromEnv(EnvLogAccount, level)))
	ctx = tflog.NewSubsystem(ctx, ldapclient.Subsystem,
		tflog.WithLevel(levelFromEnv(EnvLogLDAP, level)))

	id := uuid.NewString()
	ctx = tflog.SetField(ctx, "invocation_id", id)
	ctx = tflog.SubsystemSetField(ctx, Subsystem, "invocation_id", id)
	ctx = tflog.SubsystemSetField(ctx, ldapclient.Subsystem, "invocation_id", id)

	return ctx
}

func levelFromEnv(name string, fallback hclog.Level) hclog.Level {
	level := hclog.LevelFromString(os.Getenv(name))
	if level == hclog.NoLevel {
		return fallback
	}
	return level
}
