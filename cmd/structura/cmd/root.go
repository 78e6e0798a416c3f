// Package cmd implements the structura command-line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"structura/internal/adapters/sqlite"
	"structura/internal/config"
	"structura/internal/ports"
)

var (
	dbPath string
	cfg    *config.Config
	store  ports.StructureStore
)

var rootCmd = &cobra.Command{
	Use:   "structura",
	Short: "CLI for managing hierarchical structure catalogs",
	Long: `structura manages a catalog of element types, thing nodes, sources
and sinks, kept in sync with complete structure documents.

It provides commands to synchronize, wipe, browse and search the
catalog, and to serve it over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		store, err = sqlite.Open(cfg.DatabasePath, sqlite.Options{
			BatchSize: cfg.BatchSize,
			Logger:    slog.Default(),
		})
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to the catalog database (default from STRUCTURA_DB_PATH)")
}

// GetStore returns the initialized structure store
func GetStore() ports.StructureStore {
	return store
}
