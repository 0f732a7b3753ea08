package port

import "techdocs/internal/domain"

// Loader converts a raw source (URL, file path) into documents with
// provenance metadata attached.
type Loader interface {
	// Load fetches and parses the source. Returns at least one document
	// on success.
	Load(source string) ([]domain.Document, error)

	// SourceType identifies the kind of source this loader handles
	// ("web", "pdf").
	SourceType() string
}
