package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"techdocs/internal/usecase"
)

var (
	docsJSON       bool
	docsEmbeddings bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Browse indexed documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all indexed documents",
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show <document>",
	Short: "Show the chunks of one document",
	Long: `Show every chunk of an indexed document, identified by its name
(filename or source URL) as printed by "docs list".`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsShow,
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.PersistentFlags().BoolVar(&docsJSON, "json", false, "output as JSON")
	docsShowCmd.Flags().BoolVar(&docsEmbeddings, "embeddings", false, "include raw embedding vectors and full chunk text")
}

func runDocsList(cmd *cobra.Command, args []string) error {
	manager := newManager()
	defer manager.InvalidateClient()

	explorer := usecase.NewExplorer(manager, cfg.Storage.Collection)
	summaries, err := explorer.ListDocuments()
	if err != nil {
		return err
	}

	if docsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No documents indexed.")
		return nil
	}

	for _, s := range summaries {
		stack := s.Stack
		if stack == "" {
			stack = "-"
		}
		fmt.Printf("%-50s  %-4s  %-12s  %4d chunks  %s\n", s.Name, s.DocType, stack, s.NumChunks, s.IndexedAt)
	}
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	manager := newManager()
	defer manager.InvalidateClient()

	explorer := usecase.NewExplorer(manager, cfg.Storage.Collection)
	chunks, err := explorer.GetChunks(args[0], docsEmbeddings)
	if err != nil {
		return err
	}

	if docsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	if len(chunks) == 0 {
		fmt.Printf("No chunks found for document %q.\n", args[0])
		return nil
	}

	for _, chunk := range chunks {
		fmt.Printf("--- chunk %s ---\n%s\n", chunk.ChunkID, chunk.Text)
		if docsEmbeddings {
			fmt.Printf("(embedding: %d dimensions)\n", len(chunk.Embedding))
		}
		fmt.Println()
	}
	return nil
}
