package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"structura/internal/adapters/httpapi"
	"structura/internal/application/commands"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Serve starts the HTTP server exposing the browse endpoints under
/adapters/vst and the structure update endpoint under /structure/update.

When prepopulation is enabled (STRUCTURA_PREPOPULATE) the catalog is
seeded from the configured structure document before the server starts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := slog.Default()

		prepopulate := commands.NewPrepopulateCommand(
			GetStore(),
			cfg.Prepopulate,
			cfg.PrepopulateViaFile,
			cfg.StructureFile,
			[]byte(cfg.StructureJSON),
			cfg.OverwriteExisting,
		)
		result, err := prepopulate.Execute(context.Background())
		if err != nil {
			return err
		}
		if result.Performed {
			log.Info("startup prepopulation done", "wiped", result.Wiped)
		}

		addr := cfg.ListenAddr
		if listenAddr != "" {
			addr = listenAddr
		}
		server := httpapi.NewServer(GetStore(), log)
		return server.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (default from STRUCTURA_LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
