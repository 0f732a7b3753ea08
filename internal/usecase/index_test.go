package usecase

import (
	"os"
	"path/filepath"
	"testing"

	"techdocs/internal/adapter/chunker"
	"techdocs/internal/adapter/provider"
	"techdocs/internal/adapter/store"
	"techdocs/internal/domain"
)

func newTestManager(t *testing.T) *store.Manager {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "usecase_test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	m := store.NewManager(filepath.Join(tmpDir, "vectors"))
	t.Cleanup(m.InvalidateClient)
	return m
}

func newTestIndexer(t *testing.T) (*Indexer, *store.Manager, *provider.MockProvider) {
	t.Helper()
	manager := newTestManager(t)
	mock := provider.NewMockProvider(64)
	indexer := NewIndexer(manager, chunker.NewSentenceChunker(1000, 200), mock, "tech_docs", "embed-model")
	return indexer, manager, mock
}

func webDocument(text, url string) domain.Document {
	return domain.Document{
		Text:     text,
		Metadata: domain.Metadata{SourceType: "web", SourceURL: url},
	}
}

func TestIndexRejectsEmptyInput(t *testing.T) {
	indexer, _, mock := newTestIndexer(t)

	if _, err := indexer.Index(nil, domain.Metadata{}); err == nil {
		t.Fatal("expected error for empty document list")
	}
	if mock.EmbedCalls() != 0 {
		t.Error("validation failure must not spend on embeddings")
	}
}

func TestIndexSingleDocument(t *testing.T) {
	indexer, manager, _ := newTestIndexer(t)

	doc := webDocument("Hello world.", "https://example.com/hello")
	stats, err := indexer.Index([]domain.Document{doc}, domain.Metadata{})
	if err != nil {
		t.Fatal(err)
	}

	if stats.DocumentsProcessed != 1 {
		t.Errorf("expected 1 document processed, got %d", stats.DocumentsProcessed)
	}
	if stats.NumChunks != 1 {
		t.Errorf("expected 1 chunk for a short document, got %d", stats.NumChunks)
	}
	if stats.NumChunks < stats.DocumentsProcessed {
		t.Error("chunk count cannot be below document count")
	}
	if stats.EmbeddingTokens == 0 {
		t.Error("expected non-zero embedding token usage")
	}
	if stats.EstimatedCost <= 0 {
		t.Errorf("expected positive estimated cost, got %g", stats.EstimatedCost)
	}

	cstats, err := manager.CollectionStats("tech_docs")
	if err != nil {
		t.Fatal(err)
	}
	if !cstats.Exists || cstats.Count != 1 {
		t.Errorf("expected persisted collection with 1 chunk, got %+v", cstats)
	}
}

func TestIndexAssignsUniqueIDsForDuplicateContent(t *testing.T) {
	indexer, manager, _ := newTestIndexer(t)

	doc := webDocument("Identical content in every copy.", "https://example.com/dup")
	if _, err := indexer.Index([]domain.Document{doc, doc, doc}, domain.Metadata{}); err != nil {
		t.Fatal(err)
	}

	collection, err := manager.GetOrCreateCollection("tech_docs")
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := collection.GetAll(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 3 identical documents, got %d", len(chunks))
	}

	ids := make(map[string]bool)
	for _, chunk := range chunks {
		if ids[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		ids[chunk.ID] = true
	}
}

func TestReindexingGrowsCollection(t *testing.T) {
	indexer, manager, _ := newTestIndexer(t)

	doc := webDocument("Same document indexed twice.", "https://example.com/twice")
	if _, err := indexer.Index([]domain.Document{doc}, domain.Metadata{}); err != nil {
		t.Fatal(err)
	}
	if _, err := indexer.Index([]domain.Document{doc}, domain.Metadata{}); err != nil {
		t.Fatal(err)
	}

	stats, err := manager.CollectionStats("tech_docs")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 2 {
		t.Errorf("expected re-indexing to add chunks, count = %d", stats.Count)
	}
}

func TestIndexStampsMetadata(t *testing.T) {
	indexer, manager, _ := newTestIndexer(t)

	doc := webDocument("Stamped content.", "https://example.com/stamp")
	caller := domain.Metadata{Stack: "go"}
	if _, err := indexer.Index([]domain.Document{doc}, caller); err != nil {
		t.Fatal(err)
	}

	// The caller's metadata value is merged, never mutated.
	if caller.IndexedAt != "" {
		t.Error("indexing mutated the caller's metadata")
	}

	collection, err := manager.GetOrCreateCollection("tech_docs")
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := collection.GetAll(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata.Stack != "go" {
		t.Errorf("stack tag not merged: %+v", chunks[0].Metadata)
	}
	if chunks[0].Metadata.IndexedAt == "" {
		t.Error("chunk missing indexing timestamp")
	}
	if chunks[0].Metadata.SourceURL != "https://example.com/stamp" {
		t.Errorf("document metadata lost: %+v", chunks[0].Metadata)
	}
}

func TestIndexBatchSharesTimestamp(t *testing.T) {
	indexer, manager, _ := newTestIndexer(t)

	docs := []domain.Document{
		webDocument("First document.", "https://example.com/a"),
		webDocument("Second document.", "https://example.com/b"),
	}
	if _, err := indexer.Index(docs, domain.Metadata{}); err != nil {
		t.Fatal(err)
	}

	collection, err := manager.GetOrCreateCollection("tech_docs")
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := collection.GetAll(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Metadata.IndexedAt != chunks[1].Metadata.IndexedAt {
		t.Errorf("batch chunks carry different timestamps: %q vs %q",
			chunks[0].Metadata.IndexedAt, chunks[1].Metadata.IndexedAt)
	}
}

func TestChunkIDUniqueAcrossPositions(t *testing.T) {
	a := chunkID("same text", "same source", 0)
	b := chunkID("same text", "same source", 1)
	if a == b {
		t.Error("chunk IDs must differ across batch positions")
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex characters, got %d (%q)", len(a), a)
	}
}
