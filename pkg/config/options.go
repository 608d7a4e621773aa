package config

import (
	"slices"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/occur"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptSpatialTolerance sets the location matching distance in meters.
func OptSpatialTolerance(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Spatial Tolerance", f) {
			c.Spatial.Tolerance = f
		}
	}
}

// OptSpatialInputSRID sets the default reference system of submitted
// points.
func OptSpatialInputSRID(i int) Option {
	return func(c *Config) {
		if isValidInt("Spatial Input SRID", i) {
			c.Spatial.InputSRID = i
		}
	}
}

// OptSpatialSerialize sets whether concurrent location matching is
// serialized. Uses pointer to distinguish between unset (nil) and false.
func OptSpatialSerialize(b *bool) Option {
	return func(c *Config) {
		if b != nil {
			c.Spatial.Serialize = b
		}
	}
}

// OptLookupCacheTTL sets how many seconds lookup lists stay cached.
func OptLookupCacheTTL(i int) Option {
	return func(c *Config) {
		if isValidInt("Lookup Cache TTL", i) {
			c.Lookup.CacheTTL = i
		}
	}
}

// OptMandatory sets mandatory fields of one entity kind. Unknown kinds
// are rejected, unknown field names are dropped with a warning. An
// empty list makes all fields of the kind optional.
func OptMandatory(kind string, fields []string) Option {
	kind = strings.ToLower(strings.TrimSpace(kind))
	return func(c *Config) {
		k, ok := occur.ParseKind(kind)
		if !ok {
			gn.Warn("<em>%s</em> is not an entity kind, ignoring", kind)
			return
		}
		res := make([]string, 0, len(fields))
		for _, v := range fields {
			v = strings.ToLower(strings.TrimSpace(v))
			if !occur.IsField(k, v) {
				gn.Warn(
					"<em>%s</em> has no field '%s', ignoring", kind, v,
				)
				continue
			}
			if !slices.Contains(res, v) {
				res = append(res, v)
			}
		}
		if c.Mandatory == nil {
			c.Mandatory = make(map[string][]string)
		}
		c.Mandatory[kind] = res
	}
}

// OptUser sets the identity recorded in audit logs.
// Runtime-only field - not in ToOptions().
func OptUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("User", s) {
			c.User = s
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
