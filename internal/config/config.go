// Package config loads the TOML configuration consumed by the account module.
package config

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"

	"github.com/isometry/pam-ldap-map/internal/remap"
)

// DirectoryConfig is the [ldap] section.
type DirectoryConfig struct {
	// URI is a comma-separated failover list of LDAP URLs.
	URI  string `toml:"uri"`
	User string `toml:"user"`
	Pass string `toml:"pass"`

	// Timeouts in whole seconds.
	ConnTimeout int64 `toml:"conn_timeout" default:"2"`
	OpTimeout   int64 `toml:"op_timeout" default:"5"`

	UserBaseDN     string `toml:"user_base_dn"`
	GroupBaseDN    string `toml:"group_base_dn"`
	UIDAttribute   string `toml:"uid_attribute"`
	GroupAttribute string `toml:"group_attribute"`
}

// ConnectTimeout bounds a single transport connection attempt.
func (d *DirectoryConfig) ConnectTimeout() time.Duration {
	return time.Duration(d.ConnTimeout) * time.Second
}

// OperationTimeout bounds bind and search.
func (d *DirectoryConfig) OperationTimeout() time.Duration {
	return time.Duration(d.OpTimeout) * time.Second
}

// Config is the complete, immutable module configuration.
type Config struct {
	LDAP     DirectoryConfig
	Mappings remap.Table
}

type document struct {
	LDAP     DirectoryConfig   `toml:"ldap"`
	Mappings map[string]string `toml:"mappings"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(err)
	}
	return Parse(string(data))
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(data string) (*Config, error) {
	var doc document
	if err := defaults.Set(&doc.LDAP); err != nil {
		return nil, parseError(fmt.Errorf("failed to set default values: %w", err))
	}

	md, err := toml.Decode(data, &doc)
	if err != nil {
		return nil, parseError(err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, parseError(fmt.Errorf("unknown keys: %s", strings.Join(keys, ", ")))
	}

	var errs []error
	for _, section := range []string{"ldap", "mappings"} {
		if !md.IsDefined(section) {
			errs = append(errs, fmt.Errorf("missing section [%s]", section))
		}
	}
	if len(errs) > 0 {
		return nil, parseError(errors.Join(errs...))
	}

	if err := doc.validate(); err != nil {
		return nil, parseError(err)
	}

	return &Config{
		LDAP:     doc.LDAP,
		Mappings: remap.NewTable(doc.Mappings),
	}, nil
}

// maxTimeoutSeconds is the largest timeout representable as a time.Duration.
const maxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

func validateTimeout(key string, seconds int64) error {
	switch {
	case seconds <= 0:
		return fmt.Errorf("ldap.%s must be positive, got %d", key, seconds)
	case seconds > maxTimeoutSeconds:
		return fmt.Errorf("ldap.%s must be at most %d seconds, got %d", key, maxTimeoutSeconds, seconds)
	}
	return nil
}

func (d *document) validate() error {
	var errs []error

	required := []struct {
		key   string
		value string
	}{
		{"uri", d.LDAP.URI},
		{"user", d.LDAP.User},
		{"pass", d.LDAP.Pass},
		{"user_base_dn", d.LDAP.UserBaseDN},
		{"group_base_dn", d.LDAP.GroupBaseDN},
		{"uid_attribute", d.LDAP.UIDAttribute},
		{"group_attribute", d.LDAP.GroupAttribute},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("ldap.%s must be a non-empty string", r.key))
		}
	}

	errs = append(errs, validateTimeout("conn_timeout", d.LDAP.ConnTimeout))
	errs = append(errs, validateTimeout("op_timeout", d.LDAP.OpTimeout))

	for _, group := range slices.Sorted(maps.Keys(d.Mappings)) {
		target := d.Mappings[group]
		if group == "" {
			errs = append(errs, errors.New("mappings: group name must not be empty"))
		}
		if target == "" {
			errs = append(errs, fmt.Errorf("mappings.%s: target identity must not be empty", group))
		}
	}

	return errors.Join(errs...)
}
