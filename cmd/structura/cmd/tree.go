package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"structura/internal/adapters/tui"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Browse the catalog interactively",
	Long: `Tree opens an interactive terminal browser over the catalog. Levels
are loaded lazily as nodes are expanded; y copies the selected entity's
external id to the clipboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := tui.NewApp(GetStore())
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
