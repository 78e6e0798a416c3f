package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"structura/internal/application/commands"
	"structura/internal/domain"
)

var syncWipe bool

var syncCmd = &cobra.Command{
	Use:   "sync <file>",
	Short: "Synchronize a structure document into the catalog",
	Long: `Synchronize reads a complete structure document from a JSON file and
reconciles it against the catalog: new entities are inserted, existing
ones (matched by stakeholder key and external id) are updated, and
source/sink attachments are replaced.

Examples:
  structura sync structure.json
  structura sync structure.json --wipe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		structure, err := domain.LoadStructureFromFile(args[0])
		if err != nil {
			return err
		}

		result, err := commands.NewSyncCommand(GetStore(), structure, syncWipe).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncWipe, "wipe", false, "wipe the existing catalog before synchronizing")
	rootCmd.AddCommand(syncCmd)
}
