package usecase

import (
	"fmt"
	"sort"

	"techdocs/internal/adapter/store"
	"techdocs/internal/domain"
)

// chunkPreviewLen bounds chunk text in listings.
const chunkPreviewLen = 200

// Explorer provides read-only browsing over the persisted collection,
// independent of the answer-generation path. It never mutates the store.
type Explorer struct {
	manager    *store.Manager
	collection string
}

// NewExplorer creates an explorer over the named collection.
func NewExplorer(manager *store.Manager, collection string) *Explorer {
	return &Explorer{manager: manager, collection: collection}
}

// ListDocuments groups all stored chunks by derived document identity and
// returns one summary per document, newest first.
func (ex *Explorer) ListDocuments() ([]domain.DocumentSummary, error) {
	chunks, err := ex.allChunks(false)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve indexed documents: %w", err)
	}

	groups := make(map[string]*domain.DocumentSummary)
	for _, chunk := range chunks {
		name := chunk.Metadata.DocumentName()
		summary, ok := groups[name]
		if !ok {
			summary = &domain.DocumentSummary{
				Name:      name,
				DocType:   chunk.Metadata.SourceType,
				Stack:     chunk.Metadata.Stack,
				IndexedAt: chunk.Metadata.IndexedAt,
			}
			groups[name] = summary
		}
		summary.NumChunks++
	}

	summaries := make([]domain.DocumentSummary, 0, len(groups))
	for _, summary := range groups {
		summaries = append(summaries, *summary)
	}

	// RFC 3339 timestamps sort lexicographically; newest first.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].IndexedAt > summaries[j].IndexedAt
	})

	return summaries, nil
}

// GetChunks returns every chunk belonging to one document, identified by
// its derived name. Text is truncated to a bounded preview unless
// embeddings are requested, in which case the full text and the raw
// vectors are included for inspection.
func (ex *Explorer) GetChunks(identifier string, withEmbeddings bool) ([]domain.ChunkDetail, error) {
	if identifier == "" {
		return nil, fmt.Errorf("document identifier cannot be empty")
	}

	chunks, err := ex.allChunks(withEmbeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve chunks for document: %w", err)
	}

	var details []domain.ChunkDetail
	for _, chunk := range chunks {
		if chunk.Metadata.DocumentName() != identifier {
			continue
		}

		text := chunk.Text
		if !withEmbeddings && len(text) > chunkPreviewLen {
			text = text[:chunkPreviewLen] + "..."
		}

		details = append(details, domain.ChunkDetail{
			ChunkID:   chunk.ID,
			Text:      text,
			Metadata:  chunk.Metadata,
			Embedding: chunk.Embedding,
		})
	}

	return details, nil
}

// allChunks reads the full collection without creating it when absent.
func (ex *Explorer) allChunks(withEmbeddings bool) ([]domain.Chunk, error) {
	stats, err := ex.manager.CollectionStats(ex.collection)
	if err != nil {
		return nil, err
	}
	if !stats.Exists {
		return nil, nil
	}

	collection, err := ex.manager.GetOrCreateCollection(ex.collection)
	if err != nil {
		return nil, err
	}
	return collection.GetAll(withEmbeddings)
}
