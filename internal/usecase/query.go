package usecase

import (
	"fmt"
	"strings"
	"time"

	"techdocs/internal/adapter/retriever"
	"techdocs/internal/adapter/store"
	"techdocs/internal/domain"
	"techdocs/internal/pricing"
	"techdocs/internal/port"
)

// NoContentAnswer is returned when no chunk survives filtering. Callers
// rely on this exact text instead of an opaque placeholder.
const NoContentAnswer = "No relevant content was found in the indexed documents for this query. Try lowering the similarity threshold or indexing more documents."

// rerankTopN bounds the chunk set after LLM reranking.
const rerankTopN = 5

const synthesisSystemPrompt = `You are a technical documentation assistant. Answer the user's
question using only the provided context passages. Cite concrete details from the
context. If the context does not contain the answer, say so plainly.`

// Engine executes the multi-stage retrieval pipeline: optional HyDE query
// transformation, vector retrieval, similarity-threshold filtering,
// optional LLM reranking, and answer synthesis.
type Engine struct {
	manager        *store.Manager
	provider       port.Provider
	hyde           *retriever.HyDETransform
	reranker       *retriever.LLMReranker
	collection     string
	llmModel       string
	embeddingModel string
	rerankModel    string
}

// NewEngine creates a retrieval engine over the named collection.
func NewEngine(manager *store.Manager, provider port.Provider, collection, llmModel, embeddingModel, rerankModel string) *Engine {
	return &Engine{
		manager:        manager,
		provider:       provider,
		hyde:           retriever.NewHyDETransform(provider, llmModel),
		reranker:       retriever.NewLLMReranker(provider, rerankModel, rerankTopN),
		collection:     collection,
		llmModel:       llmModel,
		embeddingModel: embeddingModel,
		rerankModel:    rerankModel,
	}
}

// Query answers a question against the indexed collection. The collection
// must be non-empty; this is checked before any embedding spend.
func (e *Engine) Query(query string, cfg domain.RAGConfig) (*domain.RAGResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", cfg.TopK)
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in [0, 1], got %g", cfg.SimilarityThreshold)
	}

	start := time.Now()

	collection, err := e.manager.GetOrCreateCollection(e.collection)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	count, err := collection.Count()
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("the database is empty: index documents first")
	}

	queryStart := time.Now()

	var llmUsage, rerankUsage port.Usage

	// Stage 1: optional HyDE transform. The hypothetical document is
	// embedded in place of the query; the original query still drives
	// reranking and synthesis.
	hydeQuery := ""
	retrievalText := query
	if cfg.UseHyDE {
		hydeQuery, llmUsage, err = e.hydeDocument(query)
		if err != nil {
			return nil, err
		}
		retrievalText = hydeQuery
	}

	// Stage 2: retrieval.
	vectors, embedUsage, err := e.provider.Embed([]string{retrievalText})
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("retrieval failed: no embedding generated for query")
	}

	retrieved, err := collection.Search(vectors[0], cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	// Stage 3: similarity-threshold filtering.
	var survivors []store.SearchResult
	for _, result := range retrieved {
		if result.Score >= cfg.SimilarityThreshold {
			survivors = append(survivors, result)
		}
	}

	// Stage 4: optional reranking on the survivors, truncated to a fixed
	// maximum.
	if cfg.UseReranking && len(survivors) > 0 {
		survivors, rerankUsage, err = e.rerank(query, survivors)
		if err != nil {
			return nil, err
		}
	}

	// Stage 5: synthesis with the original query.
	answer := NoContentAnswer
	if len(survivors) > 0 {
		var synthesisUsage port.Usage
		answer, synthesisUsage, err = e.synthesize(query, survivors)
		if err != nil {
			return nil, err
		}
		llmUsage.Add(synthesisUsage)
	}

	queryTime := time.Since(queryStart)

	usedIDs := make(map[string]bool, len(survivors))
	for _, s := range survivors {
		usedIDs[s.ID] = true
	}

	allChunks := make([]domain.ChunkInfo, 0, len(retrieved))
	for _, result := range retrieved {
		allChunks = append(allChunks, domain.ChunkInfo{
			Text:     result.Text,
			Score:    result.Score,
			Metadata: result.Metadata,
			Used:     usedIDs[result.ID],
		})
	}
	sourceChunks := make([]domain.ChunkInfo, 0, len(survivors))
	for _, s := range survivors {
		sourceChunks = append(sourceChunks, domain.ChunkInfo{
			Text:     s.Text,
			Score:    s.Score,
			Metadata: s.Metadata,
			Used:     true,
		})
	}

	totalUsage := llmUsage
	totalUsage.Add(rerankUsage)

	cost := pricing.EmbeddingCost(embedUsage.InputTokens, e.provider.Pricing(e.embeddingModel)) +
		pricing.LLMCost(llmUsage.InputTokens, llmUsage.OutputTokens, e.provider.Pricing(e.llmModel)) +
		pricing.LLMCost(rerankUsage.InputTokens, rerankUsage.OutputTokens, e.provider.Pricing(e.rerankModel))

	metrics := domain.ResponseMetrics{
		// Retrieval and synthesis run back to back against remote
		// backends and are not independently instrumentable without
		// duplicating provider calls; a fixed 30/70 split approximates
		// the division.
		RetrievalTime:     queryTime * 30 / 100,
		LLMTime:           queryTime * 70 / 100,
		TotalTime:         time.Since(start),
		ChunksRetrieved:   len(retrieved),
		ChunksAfterFilter: len(sourceChunks),
		Debug:             cfg.Debug,
		UseHyDE:           cfg.UseHyDE,
		UseReranking:      cfg.UseReranking,
		QueryTokens:       embedUsage.InputTokens,
		LLMInputTokens:    totalUsage.InputTokens,
		LLMOutputTokens:   totalUsage.OutputTokens,
		EstimatedCost:     cost,
	}

	return &domain.RAGResponse{
		Answer:       answer,
		SourceChunks: sourceChunks,
		AllChunks:    allChunks,
		Metrics:      metrics,
		HyDEQuery:    hydeQuery,
	}, nil
}

func (e *Engine) hydeDocument(query string) (string, port.Usage, error) {
	doc, usage, err := e.hyde.HypotheticalDocument(query)
	if err != nil {
		return "", usage, fmt.Errorf("query transformation failed: %w", err)
	}
	return doc, usage, nil
}

func (e *Engine) rerank(query string, survivors []store.SearchResult) ([]store.SearchResult, port.Usage, error) {
	passages := make([]string, len(survivors))
	for i, s := range survivors {
		passages[i] = s.Text
	}

	ranked, usage, err := e.reranker.Rerank(query, passages)
	if err != nil {
		return nil, usage, fmt.Errorf("reranking failed: %w", err)
	}

	reordered := make([]store.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		reordered = append(reordered, survivors[r.Index])
	}
	return reordered, usage, nil
}

func (e *Engine) synthesize(query string, survivors []store.SearchResult) (string, port.Usage, error) {
	var sb strings.Builder
	sb.WriteString("Context passages:\n\n")
	for i, s := range survivors {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, s.Text)
	}
	fmt.Fprintf(&sb, "Question: %s", query)

	messages := []port.Message{
		{Role: "system", Content: synthesisSystemPrompt},
		{Role: "user", Content: sb.String()},
	}

	answer, usage, err := e.provider.GenerateText(e.llmModel, messages, 0.1)
	if err != nil {
		return "", usage, fmt.Errorf("answer synthesis failed: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = NoContentAnswer
	}
	return answer, usage, nil
}
