// Package config provides configuration management for gnocc.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode
//   - Log: level, format, destination
//   - Spatial: tolerance, input_srid, serialize
//   - Lookup: cache_ttl
//   - Mandatory: field names per entity kind
//
// Runtime-only fields (CLI flags only):
//   - User (defaults to Database.User)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNOCC_ prefix with underscores for nesting:
//
//	GNOCC_DATABASE_HOST=localhost
//	GNOCC_DATABASE_PORT=5432
//	GNOCC_SPATIAL_TOLERANCE=50
//	GNOCC_LOG_LEVEL=info
package config

import (
	"github.com/gnames/gnocc/pkg/occur"
)

// StoreSRID is the coordinate reference system of the location table,
// ETRS89 / UTM zone 33N. Distances in this system are in meters.
const StoreSRID = 25833

// Config represents the complete gnocc configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Spatial contains settings of location matching.
	Spatial SpatialConfig `mapstructure:"spatial" yaml:"spatial"`

	// Lookup contains settings of the lookup service.
	Lookup LookupConfig `mapstructure:"lookup" yaml:"lookup"`

	// Mandatory maps entity kinds to fields that must be filled in
	// before a submission is written. Keys are "dataset", "project",
	// "reference", "location", "event", "occurrence".
	Mandatory map[string][]string `mapstructure:"mandatory" yaml:"mandatory"`

	// User is the identity recorded in audit logs. Empty value means
	// the database user.
	User string `mapstructure:"-" yaml:"-"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `mapstructure:"-" yaml:"-"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// SpatialConfig contains settings of the location matcher.
type SpatialConfig struct {
	// Tolerance is the distance in meters within which a submitted point
	// resolves to an existing location. The boundary is inclusive.
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`

	// InputSRID is the reference system of submitted points that do not
	// state their own. 4326 is WGS 84 longitude/latitude.
	InputSRID int `mapstructure:"input_srid" yaml:"input_srid"`

	// Serialize makes concurrent submissions wait for each other before
	// matching locations, so two sessions cannot both create a location
	// at the same place.
	Serialize *bool `mapstructure:"serialize" yaml:"serialize"`
}

// LookupConfig contains settings of the lookup service.
type LookupConfig struct {
	// CacheTTL is the number of seconds vocabulary and taxon lists are
	// kept in memory.
	CacheTTL int `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	serialize := true
	res := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "nofa",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		Spatial: SpatialConfig{
			Tolerance: 50,
			InputSRID: 4326,
			Serialize: &serialize,
		},
		Lookup: LookupConfig{
			CacheTTL: 600,
		},
		Mandatory: DefaultMandatory(),
	}

	return res
}

// DefaultMandatory returns mandatory fields of the NOFA input form.
func DefaultMandatory() map[string][]string {
	return map[string][]string{
		"dataset": {
			"name", "organization", "rights_holder", "access_rights",
		},
		"project": {
			"name", "organization", "number", "start_year", "leader",
			"financer",
		},
		"reference": {"citation"},
		"location":  {},
		"event": {
			"date_start", "date_end", "sampling_protocol", "recorded_by",
		},
		"occurrence": {
			"taxon", "occurrence_status", "establishment_means",
		},
	}
}

// MandatoryFields converts the configured mandatory fields to the form
// used by validation.
func (c *Config) MandatoryFields() occur.Mandatory {
	res := make(occur.Mandatory, len(c.Mandatory))
	for k, v := range c.Mandatory {
		res[occur.Kind(k)] = v
	}
	return res
}

// Identity returns the user name recorded in audit logs.
func (c *Config) Identity() string {
	if c.User != "" {
		return c.User
	}
	return c.Database.User
}

// SerializeMatching reports whether location matching takes a
// transaction-scoped lock.
func (c *Config) SerializeMatching() bool {
	return c.Spatial.Serialize == nil || *c.Spatial.Serialize
}
