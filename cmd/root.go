/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/internal/iofs"
	"github.com/gnames/gnocc/internal/iologger"
	app "github.com/gnames/gnocc/pkg"
	"github.com/gnames/gnocc/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
	user    string
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gnocc",
		Short:   "gnocc stores freshwater species occurrences in PostGIS",
		Long: `gnocc manages the NOFA occurrence database.

It creates the schema, writes submissions of datasets, projects,
references, locations, sampling events and occurrences in single
transactions, reuses nearby locations instead of duplicating them,
and keeps an audit trail of every change.

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GNOCC_*)
  3. Config file (~/.config/gnocc/config.yaml)
  4. Built-in defaults

Environment variables:
  GNOCC_DATABASE_HOST        PostgreSQL host
  GNOCC_DATABASE_PORT        PostgreSQL port
  GNOCC_DATABASE_USER        PostgreSQL user
  GNOCC_DATABASE_PASSWORD    PostgreSQL password
  GNOCC_DATABASE_DATABASE    database name
  GNOCC_SPATIAL_TOLERANCE    location matching distance in meters
  GNOCC_LOG_LEVEL            log level (debug/info/warn/error)`,
		PersistentPreRunE: bootstrap,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Flags().BoolP("version", "V", false, "version for gnocc")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "",
		"name recorded in the audit log (default: database user)")

	rootCmd.AddCommand(
		getCreateCmd(),
		getMigrateCmd(),
		getSubmitCmd(),
		getLookupCmd(),
		getNearestCmd(),
		getHistoryCmd(),
		getShowCmd(),
		getTaxaCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	opts = append(opts, config.OptHomeDir(homeDir))
	if user != "" {
		opts = append(opts, config.OptUser(user))
	}
	cfg.Update(opts)

	// the bootstrap log is kept, configured logging appends to it
	logDir := config.LogDir(cfg.HomeDir)
	if err = iologger.Init(logDir, cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"command", cmd.Name(),
	)
	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Variables are bound one by one so the list of allowed ones stays
	// visible. They match the fields of config.ToOptions().
	v.SetEnvPrefix("GNOCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("database.host", "GNOCC_DATABASE_HOST")
	v.BindEnv("database.port", "GNOCC_DATABASE_PORT")
	v.BindEnv("database.user", "GNOCC_DATABASE_USER")
	v.BindEnv("database.password", "GNOCC_DATABASE_PASSWORD")
	v.BindEnv("database.database", "GNOCC_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "GNOCC_DATABASE_SSL_MODE")

	v.BindEnv("log.level", "GNOCC_LOG_LEVEL")
	v.BindEnv("log.format", "GNOCC_LOG_FORMAT")
	v.BindEnv("log.destination", "GNOCC_LOG_DESTINATION")

	v.BindEnv("spatial.tolerance", "GNOCC_SPATIAL_TOLERANCE")
	v.BindEnv("spatial.input_srid", "GNOCC_SPATIAL_INPUT_SRID")
	v.BindEnv("spatial.serialize", "GNOCC_SPATIAL_SERIALIZE")

	v.BindEnv("lookup.cache_ttl", "GNOCC_LOOKUP_CACHE_TTL")

	v.AutomaticEnv()
}
