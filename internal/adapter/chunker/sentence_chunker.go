package chunker

import (
	"regexp"
	"strings"

	"techdocs/internal/domain"
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// SentenceChunker splits document text into chunks of approximately
// chunkSize tokens with the configured token overlap between neighbours.
// Splitting prefers paragraph and sentence boundaries and never crosses a
// document boundary.
type SentenceChunker struct {
	chunkSize int
	overlap   int
}

// NewSentenceChunker creates a chunker. Size and overlap are counted in the
// same approximate token unit as CountTokens.
func NewSentenceChunker(chunkSize, overlap int) *SentenceChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &SentenceChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits one document. Each chunk inherits a copy of the document's
// metadata; IDs and embeddings are assigned by the indexing pipeline.
func (c *SentenceChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, nil
	}

	sentences := splitSentences(text)

	var chunks []domain.Chunk
	var current []string
	currentTokens := 0
	newSentences := 0 // sentences added since the last emit, excluding overlap carry

	emit := func() {
		if newSentences == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Text:     strings.Join(current, " "),
			Metadata: doc.Metadata.Clone(),
		})

		// Carry trailing sentences into the next chunk up to the overlap
		// budget, preserving order.
		var carry []string
		carryTokens := 0
		for i := len(current) - 1; i >= 0 && c.overlap > 0; i-- {
			tokens := CountTokens(current[i])
			if carryTokens+tokens > c.overlap {
				break
			}
			carry = append([]string{current[i]}, carry...)
			carryTokens += tokens
		}
		current = carry
		currentTokens = carryTokens
		newSentences = 0
	}

	for _, sentence := range sentences {
		tokens := CountTokens(sentence)

		// A single sentence over budget is hard-split by words.
		if tokens > c.chunkSize {
			emit()
			current, currentTokens = nil, 0
			for _, piece := range hardSplit(sentence, c.chunkSize) {
				chunks = append(chunks, domain.Chunk{
					Text:     piece,
					Metadata: doc.Metadata.Clone(),
				})
			}
			continue
		}

		if currentTokens+tokens > c.chunkSize {
			emit()
		}
		current = append(current, sentence)
		currentTokens += tokens
		newSentences++
	}
	emit()

	return chunks, nil
}

// splitSentences splits text into sentences, treating paragraph breaks as
// hard boundaries so chunk edges land on natural seams.
func splitSentences(text string) []string {
	var sentences []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		matches := sentencePattern.FindAllString(paragraph, -1)
		if len(matches) == 0 {
			sentences = append(sentences, paragraph)
			continue
		}
		for _, m := range matches {
			m = strings.TrimSpace(m)
			if m != "" {
				sentences = append(sentences, m)
			}
		}
	}
	return sentences
}

// hardSplit cuts an oversized sentence into pieces of at most maxTokens.
func hardSplit(sentence string, maxTokens int) []string {
	words := strings.Fields(sentence)
	var pieces []string
	var current []string
	currentTokens := 0

	for _, word := range words {
		tokens := CountTokens(word)
		if tokens == 0 {
			tokens = 1
		}
		if currentTokens+tokens > maxTokens && len(current) > 0 {
			pieces = append(pieces, strings.Join(current, " "))
			current = nil
			currentTokens = 0
		}
		current = append(current, word)
		currentTokens += tokens
	}
	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}
	return pieces
}
