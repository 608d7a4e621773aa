// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"strings"

	"github.com/gnames/gnocc/pkg/config"
	"github.com/spf13/viper"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "gnocc_test"

	// TestUser is the identity written to audit logs by tests.
	TestUser = "tester"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It starts from defaults, applies GNOCC_DATABASE_* environment variables
// and overrides the database name to TestDatabaseName for safety.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	v := viper.New()
	v.SetEnvPrefix("GNOCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var opts []config.Option
	if s := v.GetString("database.host"); s != "" {
		opts = append(opts, config.OptDatabaseHost(s))
	}
	if i := v.GetInt("database.port"); i > 0 {
		opts = append(opts, config.OptDatabasePort(i))
	}
	if s := v.GetString("database.user"); s != "" {
		opts = append(opts, config.OptDatabaseUser(s))
	}
	if s := v.GetString("database.password"); s != "" {
		opts = append(opts, config.OptDatabasePassword(s))
	}
	if s := v.GetString("database.ssl_mode"); s != "" {
		opts = append(opts, config.OptDatabaseSSLMode(s))
	}

	cfg := config.New()
	cfg.Update(opts)
	cfg.Update([]config.Option{config.OptUser(TestUser)})

	// Always use test database for safety
	cfg.Database.Database = TestDatabaseName

	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for tests.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}
