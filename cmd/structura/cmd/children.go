package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"structura/internal/application/commands"
)

var childrenCmd = &cobra.Command{
	Use:   "children [parent-id]",
	Short: "List one level of the structure hierarchy",
	Long: `Children lists the direct child thing nodes of a parent, plus the
sources and sinks attached to the parent itself. Without an argument it
lists the root nodes.

Examples:
  structura children
  structura children 4f2d9c1e-8a77-4a0e-b6cf-2f1d1c0a9b3e`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) == 1 {
			raw = args[0]
		}
		parentID, err := commands.ParseParentID(raw)
		if err != nil {
			return err
		}

		result, err := commands.NewGetChildrenCommand(GetStore(), parentID).Execute(context.Background())
		if err != nil {
			return err
		}

		level := result.Level
		if len(level.ThingNodes) == 0 && len(level.Sources) == 0 && len(level.Sinks) == 0 {
			fmt.Println("No children.")
			return nil
		}
		for _, tn := range level.ThingNodes {
			fmt.Printf("node    %s  %s\n", tn.ID, tn.Name)
		}
		for _, src := range level.Sources {
			fmt.Printf("source  %s  %s (%s)\n", src.ID, src.Name, src.Type)
		}
		for _, snk := range level.Sinks {
			fmt.Printf("sink    %s  %s (%s)\n", snk.ID, snk.Name, snk.Type)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(childrenCmd)
}
