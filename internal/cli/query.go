package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"techdocs/internal/domain"
	"techdocs/internal/pricing"
	"techdocs/internal/usecase"
)

var (
	queryText      string
	queryTopK      int
	queryThreshold float64
	queryHyDE      bool
	queryRerank    bool
	queryDebug     bool
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question against the indexed documents",
	Long: `Run a RAG query: retrieve the most similar chunks, filter them by
similarity threshold, optionally rerank them with an LLM, and synthesize
an answer.

Examples:
  techdocs query -q "how do I declare a path parameter"
  techdocs query -q "dependency injection" --hyde --rerank
  techdocs query -q "middleware ordering" --top-k 10 --threshold 0.5 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question to answer (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "chunks to retrieve (default from config)")
	queryCmd.Flags().Float64VarP(&queryThreshold, "threshold", "t", -1, "similarity threshold (default from config)")
	queryCmd.Flags().BoolVar(&queryHyDE, "hyde", false, "enable HyDE query transformation")
	queryCmd.Flags().BoolVar(&queryRerank, "rerank", false, "enable LLM reranking")
	queryCmd.Flags().BoolVar(&queryDebug, "debug", false, "include all retrieved chunks in the output")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	prov, err := newProvider()
	if err != nil {
		return err
	}

	manager := newManager()
	defer manager.InvalidateClient()

	engine := usecase.NewEngine(
		manager,
		prov,
		cfg.Storage.Collection,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.RerankModel,
	)

	ragCfg := domain.RAGConfig{
		SimilarityThreshold: cfg.RAG.DefaultThreshold,
		TopK:                cfg.RAG.DefaultTopK,
		UseHyDE:             cfg.RAG.HyDEEnabled || queryHyDE,
		UseReranking:        cfg.RAG.RerankingEnabled || queryRerank,
		Debug:               cfg.App.Debug || queryDebug,
	}
	if queryTopK > 0 {
		ragCfg.TopK = queryTopK
	}
	if queryThreshold >= 0 {
		ragCfg.SimilarityThreshold = queryThreshold
	}

	response, err := engine.Query(queryText, ragCfg)
	if err != nil {
		return err
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	}

	printResponse(response)
	return nil
}

func printResponse(response *domain.RAGResponse) {
	fmt.Println(response.Answer)

	if response.HyDEQuery != "" && response.Metrics.Debug {
		fmt.Printf("\n--- Hypothetical document used for retrieval ---\n%s\n", response.HyDEQuery)
	}

	if len(response.SourceChunks) > 0 {
		fmt.Printf("\nSources (%d):\n", len(response.SourceChunks))
		for i, chunk := range response.SourceChunks {
			fmt.Printf("  %d. %s (score %.3f)\n", i+1, chunk.Metadata.DocumentName(), chunk.Score)
		}
	}

	if response.Metrics.Debug {
		fmt.Printf("\nAll retrieved chunks (%d):\n", len(response.AllChunks))
		for i, chunk := range response.AllChunks {
			marker := " "
			if chunk.Used {
				marker = "*"
			}
			fmt.Printf("  %s %d. %s (score %.3f)\n", marker, i+1, chunk.Metadata.DocumentName(), chunk.Score)
		}
	}

	m := response.Metrics
	fmt.Printf("\nRetrieved %d chunks, %d after filtering | %s total (retrieval %s, LLM %s)\n",
		m.ChunksRetrieved, m.ChunksAfterFilter,
		m.TotalTime.Round(timeRounding), m.RetrievalTime.Round(timeRounding), m.LLMTime.Round(timeRounding))
	fmt.Printf("Tokens: %d embedding, %d LLM in, %d LLM out | %s\n",
		m.QueryTokens, m.LLMInputTokens, m.LLMOutputTokens, pricing.FormatCost(m.EstimatedCost))
}
