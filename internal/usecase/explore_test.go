package usecase

import (
	"strings"
	"testing"

	"techdocs/internal/adapter/store"
	"techdocs/internal/domain"
)

func seedChunks(t *testing.T, manager *store.Manager, chunks []domain.Chunk) {
	t.Helper()
	collection, err := manager.GetOrCreateCollection("tech_docs")
	if err != nil {
		t.Fatal(err)
	}
	if err := collection.Upsert(chunks); err != nil {
		t.Fatal(err)
	}
}

func TestListDocumentsEmptyStore(t *testing.T) {
	manager := newTestManager(t)
	explorer := NewExplorer(manager, "tech_docs")

	summaries, err := explorer.ListDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected no documents, got %d", len(summaries))
	}

	// Browsing must not create the collection.
	stats, err := manager.CollectionStats("tech_docs")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Exists {
		t.Error("listing created the collection as a side effect")
	}
}

func TestListDocumentsGroupsAndSorts(t *testing.T) {
	manager := newTestManager(t)
	explorer := NewExplorer(manager, "tech_docs")

	seedChunks(t, manager, []domain.Chunk{
		{
			ID:   "w1",
			Text: "web chunk one",
			Metadata: domain.Metadata{
				SourceType: "web",
				SourceURL:  "https://example.com/guide",
				IndexedAt:  "2026-08-01T10:00:00Z",
			},
			Embedding: []float32{1, 0},
		},
		{
			ID:   "w2",
			Text: "web chunk two",
			Metadata: domain.Metadata{
				SourceType: "web",
				SourceURL:  "https://example.com/guide",
				IndexedAt:  "2026-08-01T10:00:00Z",
			},
			Embedding: []float32{0, 1},
		},
		{
			ID:   "p1",
			Text: "pdf chunk",
			Metadata: domain.Metadata{
				SourceType: "pdf",
				Filename:   "manual.pdf",
				Stack:      "go",
				IndexedAt:  "2026-08-15T10:00:00Z",
			},
			Embedding: []float32{1, 1},
		},
	})

	summaries, err := explorer.ListDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(summaries))
	}

	// Newest first.
	if summaries[0].Name != "manual.pdf" {
		t.Errorf("expected newest document first, got %q", summaries[0].Name)
	}
	if summaries[0].NumChunks != 1 || summaries[0].DocType != "pdf" || summaries[0].Stack != "go" {
		t.Errorf("unexpected summary: %+v", summaries[0])
	}
	if summaries[1].Name != "https://example.com/guide" {
		t.Errorf("expected URL-identified document second, got %q", summaries[1].Name)
	}
	if summaries[1].NumChunks != 2 {
		t.Errorf("expected 2 chunks grouped under the URL, got %d", summaries[1].NumChunks)
	}
}

func TestGetChunksPreviewAndFullText(t *testing.T) {
	manager := newTestManager(t)
	explorer := NewExplorer(manager, "tech_docs")

	longText := strings.Repeat("x", 300)
	seedChunks(t, manager, []domain.Chunk{
		{
			ID:        "c1",
			Text:      longText,
			Metadata:  domain.Metadata{SourceType: "pdf", Filename: "manual.pdf"},
			Embedding: []float32{1, 0},
		},
	})

	chunks, err := explorer.GetChunks("manual.pdf", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0].Text) != 203 || !strings.HasSuffix(chunks[0].Text, "...") {
		t.Errorf("expected 200-character preview with ellipsis, got %d characters", len(chunks[0].Text))
	}
	if chunks[0].Embedding != nil {
		t.Error("embedding returned without being requested")
	}

	chunks, err = explorer.GetChunks("manual.pdf", true)
	if err != nil {
		t.Fatal(err)
	}
	if chunks[0].Text != longText {
		t.Error("expected full text when embeddings are requested")
	}
	if len(chunks[0].Embedding) == 0 {
		t.Error("expected embedding vector when requested")
	}
}

func TestGetChunksValidation(t *testing.T) {
	manager := newTestManager(t)
	explorer := NewExplorer(manager, "tech_docs")

	if _, err := explorer.GetChunks("", false); err == nil {
		t.Fatal("expected error for empty identifier")
	}

	chunks, err := explorer.GetChunks("unknown.pdf", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for unknown document, got %d", len(chunks))
	}
}

func TestDocumentNamePriority(t *testing.T) {
	cases := []struct {
		meta domain.Metadata
		want string
	}{
		{domain.Metadata{OriginalFilename: "orig.pdf", Filename: "tmp123.pdf", SourceURL: "https://x"}, "orig.pdf"},
		{domain.Metadata{Filename: "manual.pdf", SourceURL: "https://x"}, "manual.pdf"},
		{domain.Metadata{SourceURL: "https://example.com/doc"}, "https://example.com/doc"},
		{domain.Metadata{}, "Unknown"},
	}
	for _, tc := range cases {
		if got := tc.meta.DocumentName(); got != tc.want {
			t.Errorf("DocumentName(%+v) = %q, want %q", tc.meta, got, tc.want)
		}
	}
}
