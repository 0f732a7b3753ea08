package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"go.etcd.io/bbolt"

	"techdocs/internal/domain"
)

// MetricCosine is the only similarity metric supported. It is fixed for
// the lifetime of a collection.
const MetricCosine = "cosine"

// collectionMeta is the per-collection record kept in the collections
// bucket. Dimension is recorded on first upsert.
type collectionMeta struct {
	Metric    string `json:"metric"`
	Dimension int    `json:"dimension,omitempty"`
}

// storedChunk is the on-disk representation of one chunk.
type storedChunk struct {
	Text      string          `json:"t"`
	Metadata  domain.Metadata `json:"m"`
	Embedding []float32       `json:"v"`
}

// SearchResult is one scored hit from a similarity search.
type SearchResult struct {
	ID       string
	Text     string
	Score    float64
	Metadata domain.Metadata
}

// Collection is a handle to one named set of chunks and their embeddings.
// Handles obtained before a ClearDatabase call are dead afterwards and
// return errors from the closed database.
type Collection struct {
	name string
	db   *bbolt.DB
}

// Name returns the collection's canonical name.
func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) itemsBucket() []byte {
	return []byte("col:" + c.name)
}

// Upsert writes a batch of chunks in one transaction. All chunks must
// carry an embedding of the collection's dimension.
func (c *Collection) Upsert(chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		meta, err := readCollectionMeta(tx, c.name)
		if err != nil {
			return err
		}

		b := tx.Bucket(c.itemsBucket())
		if b == nil {
			return fmt.Errorf("collection %q not found", c.name)
		}

		for _, chunk := range chunks {
			if len(chunk.Embedding) == 0 {
				return fmt.Errorf("chunk %s has no embedding", chunk.ID)
			}
			if meta.Dimension == 0 {
				meta.Dimension = len(chunk.Embedding)
			} else if len(chunk.Embedding) != meta.Dimension {
				return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", meta.Dimension, len(chunk.Embedding))
			}

			data, err := json.Marshal(storedChunk{
				Text:      chunk.Text,
				Metadata:  chunk.Metadata,
				Embedding: chunk.Embedding,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(chunk.ID), data); err != nil {
				return err
			}
		}

		return writeCollectionMeta(tx, c.name, meta)
	})
}

// Search returns the k nearest chunks to the query embedding by cosine
// similarity, highest score first.
func (c *Collection) Search(query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", k)
	}

	var results []SearchResult
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.itemsBucket())
		if b == nil {
			return nil
		}

		return b.ForEach(func(id, v []byte) error {
			var stored storedChunk
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			results = append(results, SearchResult{
				ID:       string(id),
				Text:     stored.Text,
				Score:    cosineSimilarity(query, stored.Embedding),
				Metadata: stored.Metadata,
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// GetAll reads every chunk in the collection. Embeddings are included only
// when requested, to keep listing cheap.
func (c *Collection) GetAll(withEmbeddings bool) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.itemsBucket())
		if b == nil {
			return nil
		}

		return b.ForEach(func(id, v []byte) error {
			var stored storedChunk
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil
			}
			chunk := domain.Chunk{
				ID:       string(id),
				Text:     stored.Text,
				Metadata: stored.Metadata,
			}
			if withEmbeddings {
				chunk.Embedding = stored.Embedding
			}
			chunks = append(chunks, chunk)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return chunks, nil
}

// Count returns the number of chunks in the collection.
func (c *Collection) Count() (int, error) {
	count := 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.itemsBucket())
		if b != nil {
			count = b.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return count, nil
}

func readCollectionMeta(tx *bbolt.Tx, name string) (collectionMeta, error) {
	var meta collectionMeta
	b := tx.Bucket(bucketCollections)
	if b == nil {
		return meta, fmt.Errorf("collections bucket missing")
	}
	data := b.Get([]byte(name))
	if data == nil {
		return meta, fmt.Errorf("collection %q not found", name)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("corrupted metadata for collection %q: %w", name, err)
	}
	return meta, nil
}

func writeCollectionMeta(tx *bbolt.Tx, name string, meta collectionMeta) error {
	b := tx.Bucket(bucketCollections)
	if b == nil {
		return fmt.Errorf("collections bucket missing")
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return b.Put([]byte(name), data)
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
