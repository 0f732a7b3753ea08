package domain

import "time"

// Document is the raw output of a loader: text plus provenance metadata.
// Documents are ephemeral; they exist only between loading and indexing.
type Document struct {
	Text     string
	Metadata Metadata
}

// Metadata carries chunk provenance. Well-known fields cover everything the
// pipeline itself writes; Extra holds provider-internal keys that must stay
// out of user-facing rendering.
type Metadata struct {
	SourceType       string            `json:"source_type,omitempty"`
	SourceURL        string            `json:"source_url,omitempty"`
	Filename         string            `json:"filename,omitempty"`
	FilePath         string            `json:"file_path,omitempty"`
	OriginalFilename string            `json:"original_filename,omitempty"`
	Stack            string            `json:"stack,omitempty"`
	IndexedAt        string            `json:"indexed_at,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// DocumentName derives the display identity of the parent document.
// Priority: original filename > filename > source URL > "Unknown".
func (m Metadata) DocumentName() string {
	switch {
	case m.OriginalFilename != "":
		return m.OriginalFilename
	case m.Filename != "":
		return m.Filename
	case m.SourceURL != "":
		return m.SourceURL
	default:
		return "Unknown"
	}
}

// Source returns the best available source identifier for ID derivation.
func (m Metadata) Source() string {
	if m.SourceURL != "" {
		return m.SourceURL
	}
	return m.FilePath
}

// Clone returns a deep copy so callers' metadata is never mutated.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Merge overlays the non-empty fields of other onto a copy of m. Extra
// entries from other win on key collisions.
func (m Metadata) Merge(other Metadata) Metadata {
	out := m.Clone()
	if other.SourceType != "" {
		out.SourceType = other.SourceType
	}
	if other.SourceURL != "" {
		out.SourceURL = other.SourceURL
	}
	if other.Filename != "" {
		out.Filename = other.Filename
	}
	if other.FilePath != "" {
		out.FilePath = other.FilePath
	}
	if other.OriginalFilename != "" {
		out.OriginalFilename = other.OriginalFilename
	}
	if other.Stack != "" {
		out.Stack = other.Stack
	}
	if other.IndexedAt != "" {
		out.IndexedAt = other.IndexedAt
	}
	if len(other.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(other.Extra))
		}
		for k, v := range other.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Chunk is a bounded slice of document text as persisted in a collection,
// together with its embedding. Chunks are immutable once written.
type Chunk struct {
	ID        string
	Text      string
	Metadata  Metadata
	Embedding []float32
}

// RAGConfig carries the per-query knobs. Immutable for the query's duration.
type RAGConfig struct {
	SimilarityThreshold float64
	TopK                int
	UseHyDE             bool
	UseReranking        bool
	Debug               bool
}

// ChunkInfo is a retrieved chunk as reported to the caller. Used marks
// whether the chunk survived threshold filtering and reranking.
type ChunkInfo struct {
	Text     string   `json:"text"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
	Used     bool     `json:"used"`
}

// ResponseMetrics holds cost and latency telemetry for one query.
type ResponseMetrics struct {
	RetrievalTime     time.Duration `json:"retrieval_time"`
	LLMTime           time.Duration `json:"llm_time"`
	TotalTime         time.Duration `json:"total_time"`
	ChunksRetrieved   int           `json:"chunks_retrieved"`
	ChunksAfterFilter int           `json:"chunks_after_filter"`
	Debug             bool          `json:"debug"`
	UseHyDE           bool          `json:"use_hyde"`
	UseReranking      bool          `json:"use_reranking"`
	QueryTokens       int           `json:"query_tokens"`
	LLMInputTokens    int           `json:"llm_input_tokens"`
	LLMOutputTokens   int           `json:"llm_output_tokens"`
	EstimatedCost     float64       `json:"estimated_cost"`
}

// RAGResponse is the full result of one query. SourceChunks is the subset of
// AllChunks that survived filtering; HyDEQuery is the hypothetical document
// text when HyDE was active, empty otherwise.
type RAGResponse struct {
	Answer       string          `json:"answer"`
	SourceChunks []ChunkInfo     `json:"source_chunks"`
	AllChunks    []ChunkInfo     `json:"all_chunks"`
	Metrics      ResponseMetrics `json:"metrics"`
	HyDEQuery    string          `json:"hyde_query,omitempty"`
}

// IndexStats summarizes one indexing run. Produced per call, never persisted.
type IndexStats struct {
	NumChunks          int
	TimeTaken          time.Duration
	DocumentsProcessed int
	EmbeddingTokens    int
	EstimatedCost      float64
}

// DocumentSummary is one row of the indexed-content listing.
type DocumentSummary struct {
	Name      string `json:"name"`
	DocType   string `json:"doc_type"`
	Stack     string `json:"stack"`
	IndexedAt string `json:"indexed_at"`
	NumChunks int    `json:"num_chunks"`
}

// ChunkDetail is one chunk of a document as shown by the explorer.
// Embedding is populated only when explicitly requested.
type ChunkDetail struct {
	ChunkID   string    `json:"chunk_id"`
	Text      string    `json:"text"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"embedding,omitempty"`
}
