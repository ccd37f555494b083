// Package cli defines the cobra command tree for arv.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evcraddock/arv/internal/config"
	"github.com/evcraddock/arv/internal/db"
	"github.com/evcraddock/arv/internal/logging"
)

var (
	flagConfig string
	flagFormat string

	// cfg is loaded before any command runs.
	cfg *config.Config
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:   "arv",
		Short: "Estimate after-repair value from comparable sales",
		Long: "arv fetches recent comparable sales for a property from Propwire or ATTOM, " +
			"ranks them by how closely they match its living area and lot size, and averages " +
			"the closest matches into an After-Repair-Value estimate.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, v)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default: ~/.config/arv/config.yaml)")
	pf.StringVar(&flagFormat, "format", "text", "output format (text|json)")
	pf.String("db", "", "SQLite history database path (default: ~/.config/arv/valuations.db)")
	pf.String("provider", "", "comps provider (propwire|attom)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")

	bindFlag(v, "store.path", root, "db")
	bindFlag(v, "provider", root, "provider")
	bindFlag(v, "log.level", root, "log-level")
	bindFlag(v, "log.format", root, "log-format")

	root.AddCommand(
		newValueCmd(v),
		newHistoryCmd(),
		newShowCmd(),
		newRemoveCmd(),
		newServeCmd(v),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	flag := cmd.PersistentFlags().Lookup(name)
	if flag == nil {
		flag = cmd.Flags().Lookup(name)
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding --%s: %v", name, err))
	}
}

// initConfig loads configuration and sets up logging.
func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	if flagFormat != "text" && flagFormat != "json" {
		return fmt.Errorf("invalid --format %q (want text or json)", flagFormat)
	}

	loaded, err := config.Load(v, flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	return logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
}

// openDB opens the history database from the --db flag, config or default path.
func openDB() (*sql.DB, error) {
	path := cfg.Store.Path
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
