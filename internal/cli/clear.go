package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire vector store",
	Long: `Irreversibly delete all indexed documents by wiping the vector store's
persistence directory. Prompts for confirmation unless --yes is given.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	manager := newManager()

	if !clearYes {
		fmt.Printf("This will permanently delete all indexed documents in %s. Continue? [y/N] ", manager.PersistDir())
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	result := manager.ClearDatabase()
	fmt.Println(result.Message)
	if !result.Success {
		return fmt.Errorf("clear failed for %s", result.Path)
	}
	return nil
}
