package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"structura/internal/application/commands"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete the entire structure catalog",
	Long: `Wipe removes every element type, thing node, source, sink and
association from the catalog. This cannot be undone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wipeForce {
			fmt.Print("This deletes the entire catalog. Continue? [y/N] ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		result, err := commands.NewWipeCommand(GetStore()).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	wipeCmd.Flags().BoolVarP(&wipeForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(wipeCmd)
}
