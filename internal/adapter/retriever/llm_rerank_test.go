package retriever

import (
	"strings"
	"testing"

	"techdocs/internal/adapter/provider"
	"techdocs/internal/port"
)

func TestParseScores(t *testing.T) {
	results := parseScores("1: 7\n2: 2\n3: 9", 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Index != 0 || results[0].Score != 7 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[2].Index != 2 || results[2].Score != 9 {
		t.Errorf("unexpected third result: %+v", results[2])
	}
}

func TestParseScoresLenient(t *testing.T) {
	// Chatter, malformed lines, out-of-range indexes and duplicates are
	// all ignored.
	response := `Here are the scores:
1: 8.5
nonsense line
2: not a number
0: 3
4: 6
1: 2
3: 1`
	results := parseScores(response, 3)
	if len(results) != 2 {
		t.Fatalf("expected 2 valid results, got %d: %+v", len(results), results)
	}
	if results[0].Index != 0 || results[0].Score != 8.5 {
		t.Errorf("unexpected result: %+v", results[0])
	}
	if results[1].Index != 2 || results[1].Score != 1 {
		t.Errorf("unexpected result: %+v", results[1])
	}
}

func TestParseScoresEmpty(t *testing.T) {
	if got := parseScores("no scores here at all", 3); len(got) != 0 {
		t.Errorf("expected no results, got %+v", got)
	}
}

func TestRerankOrdersAndTruncates(t *testing.T) {
	mock := provider.NewMockProvider(8)
	mock.GenerateFunc = func(model string, messages []port.Message) string {
		return "1: 1\n2: 5\n3: 9\n4: 3\n5: 7\n6: 2\n7: 4"
	}

	reranker := NewLLMReranker(mock, "rerank-model", 5)
	passages := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}

	results, usage, err := reranker.Rerank("question", passages)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Fatalf("expected truncation to 5, got %d", len(results))
	}

	wantOrder := []int{2, 4, 1, 6, 3} // passages scored 9, 7, 5, 4, 3
	for i, want := range wantOrder {
		if results[i].Index != want {
			t.Errorf("result %d: index = %d, want %d", i, results[i].Index, want)
		}
	}
	if usage.InputTokens == 0 {
		t.Error("expected non-zero usage from the reranking call")
	}
}

func TestRerankEmptyPassages(t *testing.T) {
	mock := provider.NewMockProvider(8)
	reranker := NewLLMReranker(mock, "rerank-model", 5)

	results, _, err := reranker.Rerank("question", nil)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("expected nil results for no passages, got %+v", results)
	}
	if mock.GenerateCalls() != 0 {
		t.Error("reranker called the model with no passages")
	}
}

func TestRerankUnparseableResponse(t *testing.T) {
	mock := provider.NewMockProvider(8)
	mock.GenerateFunc = func(model string, messages []port.Message) string {
		return "I cannot rate these passages."
	}

	reranker := NewLLMReranker(mock, "rerank-model", 5)
	_, _, err := reranker.Rerank("question", []string{"p1"})
	if err == nil {
		t.Fatal("expected error for unparseable response")
	}
}

func TestHypotheticalDocument(t *testing.T) {
	mock := provider.NewMockProvider(8)
	mock.GenerateFunc = func(model string, messages []port.Message) string {
		if len(messages) == 0 || !strings.Contains(messages[len(messages)-1].Content, "how do channels work") {
			t.Errorf("query missing from prompt: %+v", messages)
		}
		return "Channels are typed conduits for communication between goroutines."
	}

	hyde := NewHyDETransform(mock, "llm-model")
	doc, usage, err := hyde.HypotheticalDocument("how do channels work")
	if err != nil {
		t.Fatal(err)
	}
	if doc != "Channels are typed conduits for communication between goroutines." {
		t.Errorf("unexpected document: %q", doc)
	}
	if usage.OutputTokens == 0 {
		t.Error("expected non-zero output usage")
	}
}

func TestHypotheticalDocumentEmptyResponse(t *testing.T) {
	mock := provider.NewMockProvider(8)
	mock.GenerateFunc = func(model string, messages []port.Message) string {
		return "   "
	}

	hyde := NewHyDETransform(mock, "llm-model")
	if _, _, err := hyde.HypotheticalDocument("query"); err == nil {
		t.Fatal("expected error for empty generation")
	}
}
