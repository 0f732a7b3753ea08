package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	manager := newManager()
	defer manager.InvalidateClient()

	stats, err := manager.CollectionStats(cfg.Storage.Collection)
	if err != nil {
		return err
	}

	if !stats.Exists {
		fmt.Printf("Collection %q does not exist yet. Index documents to create it.\n", stats.Name)
		return nil
	}

	fmt.Printf("Collection: %s\n", stats.Name)
	fmt.Printf("Chunks:     %d\n", stats.Count)
	fmt.Printf("Location:   %s\n", manager.PersistDir())
	return nil
}
