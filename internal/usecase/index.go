package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"techdocs/internal/adapter/store"
	"techdocs/internal/domain"
	"techdocs/internal/pricing"
	"techdocs/internal/port"
)

// Indexer runs the indexing pipeline: chunk, stamp identity and metadata,
// embed, persist, and report statistics.
type Indexer struct {
	manager        *store.Manager
	chunker        port.Chunker
	provider       port.Provider
	collection     string
	embeddingModel string
}

// NewIndexer creates an indexer writing to the named collection.
func NewIndexer(manager *store.Manager, chunker port.Chunker, provider port.Provider, collection, embeddingModel string) *Indexer {
	return &Indexer{
		manager:        manager,
		chunker:        chunker,
		provider:       provider,
		collection:     collection,
		embeddingModel: embeddingModel,
	}
}

// Index chunks and embeds the documents and persists them in one logical
// batch. The caller's metadata (typically a stack tag) is merged into every
// chunk together with a single batch timestamp; the caller's value is never
// mutated. Writes are at-least-once: re-indexing the same source adds new
// chunks under fresh identifiers, nothing is deduplicated or rolled back.
func (ix *Indexer) Index(documents []domain.Document, metadata domain.Metadata) (domain.IndexStats, error) {
	if len(documents) == 0 {
		return domain.IndexStats{}, fmt.Errorf("no documents provided for indexing")
	}

	start := time.Now()

	stats, err := ix.index(documents, metadata)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("failed to index documents: %w", err)
	}

	stats.TimeTaken = time.Since(start)
	stats.DocumentsProcessed = len(documents)
	return stats, nil
}

func (ix *Indexer) index(documents []domain.Document, metadata domain.Metadata) (domain.IndexStats, error) {
	// One timestamp for the whole batch.
	metadata = metadata.Clone()
	metadata.IndexedAt = time.Now().Format(time.RFC3339)

	// Chunking never crosses a document boundary: each document is split
	// independently.
	var chunks []domain.Chunk
	for _, doc := range documents {
		docChunks, err := ix.chunker.Chunk(doc)
		if err != nil {
			return domain.IndexStats{}, err
		}
		chunks = append(chunks, docChunks...)
	}

	// Identifier assignment is strictly sequential: the batch position and
	// a per-chunk nanosecond timestamp feed the hash, so two chunks with
	// identical text and source still get distinct identifiers, even
	// across re-indexing runs moments apart.
	for i := range chunks {
		chunks[i].Metadata = chunks[i].Metadata.Merge(metadata)
		chunks[i].ID = chunkID(chunks[i].Text, chunks[i].Metadata.Source(), i)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, usage, err := ix.provider.Embed(texts)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("embedding failed: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return domain.IndexStats{}, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	collection, err := ix.manager.GetOrCreateCollection(ix.collection)
	if err != nil {
		return domain.IndexStats{}, err
	}
	if err := collection.Upsert(chunks); err != nil {
		return domain.IndexStats{}, err
	}

	return domain.IndexStats{
		NumChunks:       len(chunks),
		EmbeddingTokens: usage.InputTokens,
		EstimatedCost:   pricing.EmbeddingCost(usage.InputTokens, ix.provider.Pricing(ix.embeddingModel)),
	}, nil
}

// chunkID derives a chunk identifier from a bounded content preview, the
// source identifier, the batch position, and a high-resolution timestamp.
func chunkID(text, source string, position int) string {
	preview := text
	if len(preview) > 100 {
		preview = preview[:100]
	}
	idString := preview + source + strconv.Itoa(position) + strconv.FormatInt(time.Now().UnixNano(), 10)
	sum := sha256.Sum256([]byte(idString))
	return hex.EncodeToString(sum[:8])
}
