package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"techdocs/internal/adapter/chunker"
	"techdocs/internal/adapter/loader"
	"techdocs/internal/domain"
	"techdocs/internal/pricing"
	"techdocs/internal/usecase"
)

var indexStack string

var indexCmd = &cobra.Command{
	Use:   "index <source>...",
	Short: "Load and index documents",
	Long: `Load documents from URLs or PDF files and index them into the vector store.
File arguments may use glob patterns to ingest whole directories.

Examples:
  techdocs index https://fastapi.tiangolo.com/tutorial/ --stack fastapi
  techdocs index manual.pdf
  techdocs index "docs/**/*.pdf" --stack internal`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexStack, "stack", "", "technology stack tag added to every chunk")
}

func runIndex(cmd *cobra.Command, args []string) error {
	sources, err := loader.ResolveSources(args)
	if err != nil {
		return err
	}

	prov, err := newProvider()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(sources),
		progressbar.OptionSetDescription("Loading"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var documents []domain.Document
	for _, source := range sources {
		ld, err := loader.ForSource(source)
		if err != nil {
			return err
		}
		docs, err := ld.Load(source)
		if err != nil {
			return err
		}
		documents = append(documents, docs...)
		_ = bar.Add(1)
	}

	manager := newManager()
	defer manager.InvalidateClient()

	indexer := usecase.NewIndexer(
		manager,
		chunker.NewSentenceChunker(cfg.Indexing.ChunkSize, cfg.Indexing.ChunkOverlap),
		prov,
		cfg.Storage.Collection,
		cfg.LLM.EmbeddingModel,
	)

	fmt.Printf("Indexing %d document(s)...\n", len(documents))
	stats, err := indexer.Index(documents, domain.Metadata{Stack: indexStack})
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d chunks from %d document(s) in %s\n",
		stats.NumChunks, stats.DocumentsProcessed, stats.TimeTaken.Round(timeRounding))
	fmt.Printf("Embedding tokens: %d (%s)\n",
		stats.EmbeddingTokens, pricing.FormatCost(stats.EstimatedCost))

	return nil
}
