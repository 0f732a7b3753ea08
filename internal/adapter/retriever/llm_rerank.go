package retriever

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"techdocs/internal/port"
)

const rerankSystemPrompt = `You are a relevance judge for a documentation search system.
You will receive a question and a numbered list of passages.
Score each passage for how well it answers the question on a scale from 0 to 10.
Output one line per passage in the form "index: score", nothing else.
Example:
1: 7
2: 2
3: 9`

// RerankedResult is one scored entry from a reranking pass.
type RerankedResult struct {
	Index int     // position in the input slice
	Score float64 // relevance score, higher is better
}

// LLMReranker re-scores retrieved passages with a dedicated (typically
// smaller) generation model, catching relevance that embedding similarity
// misses. Results are truncated to topN.
type LLMReranker struct {
	provider port.Provider
	model    string
	topN     int
}

// NewLLMReranker creates a reranker. topN bounds the surviving passages.
func NewLLMReranker(provider port.Provider, model string, topN int) *LLMReranker {
	if topN <= 0 {
		topN = 5
	}
	return &LLMReranker{provider: provider, model: model, topN: topN}
}

// Rerank scores the passages against the query and returns them ordered by
// relevance, highest first, at most topN entries.
func (r *LLMReranker) Rerank(query string, passages []string) ([]RerankedResult, port.Usage, error) {
	if len(passages) == 0 {
		return nil, port.Usage{}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nPassages:\n", query)
	for i, passage := range passages {
		fmt.Fprintf(&sb, "%d: %s\n\n", i+1, passage)
	}

	messages := []port.Message{
		{Role: "system", Content: rerankSystemPrompt},
		{Role: "user", Content: sb.String()},
	}

	response, usage, err := r.provider.GenerateText(r.model, messages, 0.0)
	if err != nil {
		return nil, usage, fmt.Errorf("reranking failed: %w", err)
	}

	results := parseScores(response, len(passages))
	if len(results) == 0 {
		return nil, usage, fmt.Errorf("reranking failed: unparseable response %q", preview(response))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > r.topN {
		results = results[:r.topN]
	}
	return results, usage, nil
}

// parseScores extracts "index: score" lines, ignoring anything malformed
// or out of range.
func parseScores(response string, n int) []RerankedResult {
	var results []RerankedResult
	seen := make(map[int]bool)

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		idxStr, scoreStr, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
		if err != nil || idx < 1 || idx > n || seen[idx] {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(scoreStr), 64)
		if err != nil {
			continue
		}
		seen[idx] = true
		results = append(results, RerankedResult{Index: idx - 1, Score: score})
	}
	return results
}

func preview(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
