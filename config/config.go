// Package config provides configuration for the schemactl provisioning tool.
//
// Two surfaces live here: programmatic option structs used when embedding the
// tool as a library, and an optional schemactl.yaml file that extends the
// service registry and sets command defaults. Environment variables prefixed
// with SCHEMACTL_ override file values.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/giamma80/gymbro-platform-sub001/core/registry"
)

// VerifyOptions contains configuration options for grants verification.
// These options control which database roles participate in the comparison.
type VerifyOptions struct {
	// IgnoredRoles is a list of role names excluded from verification.
	// Supabase-managed infrastructure roles are never provisioned by the
	// grants scripts and would otherwise show up as spurious drift.
	IgnoredRoles []string
}

// DefaultVerifyOptions returns verification options with the Supabase
// infrastructure roles ignored.
func DefaultVerifyOptions() *VerifyOptions {
	return &VerifyOptions{
		IgnoredRoles: []string{
			"postgres",
			"supabase_admin",
			"supabase_auth_admin",
			"supabase_storage_admin",
			"authenticator",
		},
	}
}

// WithIgnoredRoles returns a new VerifyOptions with the specified ignored
// roles, replacing the defaults.
func WithIgnoredRoles(roles ...string) *VerifyOptions {
	return &VerifyOptions{IgnoredRoles: roles}
}

// WithAdditionalIgnoredRoles returns a new VerifyOptions with the defaults
// plus the additional roles specified.
func WithAdditionalIgnoredRoles(roles ...string) *VerifyOptions {
	defaults := DefaultVerifyOptions()
	all := make([]string, len(defaults.IgnoredRoles)+len(roles))
	copy(all, defaults.IgnoredRoles)
	copy(all[len(defaults.IgnoredRoles):], roles)
	return &VerifyOptions{IgnoredRoles: all}
}

// IsRoleIgnored checks if the given role is excluded from verification.
func (v *VerifyOptions) IsRoleIgnored(role string) bool {
	for _, ignored := range v.IgnoredRoles {
		if ignored == role {
			return true
		}
	}
	return false
}

// File is the parsed schemactl.yaml configuration file.
type File struct {
	// OutputDir is the default base directory for generated grants scripts.
	OutputDir string `mapstructure:"output_dir"`
	// APIURL is the default PostgREST endpoint for exposure checks.
	APIURL string `mapstructure:"api_url"`
	// Services extends (or overrides) the built-in service registry.
	Services []registry.Service `mapstructure:"services"`
}

// Load reads a schemactl.yaml file. An empty path loads defaults only; a
// missing explicit path is an error.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetEnvPrefix("SCHEMACTL")
	v.AutomaticEnv()
	v.SetDefault("output_dir", "sql")
	// AutomaticEnv only surfaces keys viper already knows about, so every
	// file key needs a default for its SCHEMACTL_ variable to be picked up.
	v.SetDefault("api_url", "")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &f, nil
}

// Registry builds the service registry: built-in services plus any entries
// from the config file. File entries win on name collisions.
func (f *File) Registry() (*registry.Registry, error) {
	r := registry.Default()
	for _, svc := range f.Services {
		if err := r.Register(svc); err != nil {
			return nil, fmt.Errorf("config service entry: %w", err)
		}
	}
	return r, nil
}
