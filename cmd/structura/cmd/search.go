package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"structura/internal/application/commands"
)

var searchCmd = &cobra.Command{
	Use:   "search <kind> <query>",
	Short: "Search the catalog by name",
	Long: `Search runs a case-insensitive substring match over entity names.
Kind is one of element-type, thing-node, source, sink or all.

Examples:
  structura search thing-node plant
  structura search all temperature`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := commands.ParseSearchKind(args[0])
		if err != nil {
			return err
		}

		result, err := commands.NewSearchCommand(GetStore(), kind, args[1]).Execute(context.Background())
		if err != nil {
			return err
		}
		if result.Total() == 0 {
			fmt.Println("No results found")
			return nil
		}

		for _, et := range result.ElementTypes {
			fmt.Printf("[element-type] %s  %s\n", et.ID, et.Name)
		}
		for _, tn := range result.ThingNodes {
			fmt.Printf("[thing-node]   %s  %s\n", tn.ID, tn.Name)
		}
		for _, src := range result.Sources {
			fmt.Printf("[source]       %s  %s\n", src.ID, src.Name)
		}
		for _, snk := range result.Sinks {
			fmt.Printf("[sink]         %s  %s\n", snk.ID, snk.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
