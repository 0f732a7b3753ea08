package port

import "techdocs/internal/domain"

// Chunker splits a document into bounded text chunks. Chunks inherit the
// document's metadata; identifiers and embeddings are assigned later by
// the indexing pipeline.
type Chunker interface {
	Chunk(doc domain.Document) ([]domain.Chunk, error)
}
