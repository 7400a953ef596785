package retrieval

import "github.com/google/uuid"

// Method identifies which ranking strategy produced a score. Scores are
// only comparable within a single request and a single method.
type Method string

const (
	MethodVector   Method = "vector"
	MethodKeyword  Method = "keyword"
	MethodFallback Method = "fallback"
)

// Chunk is a stored fragment of a document's extracted text. Embedding is
// nil when the ingestion step skipped or failed embedding generation.
type Chunk struct {
	ID          uuid.UUID
	DocumentID  uuid.UUID
	Index       int
	Content     string
	StartOffset int
	Embedding   []float32
}

// ScoredChunk annotates a Chunk with a per-request relevance score in [0,1].
type ScoredChunk struct {
	Chunk
	Score  float64
	Method Method
}

// Options tunes the ranking chain. Zero values fall back to the defaults
// the product shipped with.
type Options struct {
	// MaxResults caps the returned set. 5 is the conservative default;
	// the fast search variant uses 8.
	MaxResults int
	// KeywordFallbackBelow triggers keyword augmentation when vector
	// scoring returned fewer results than this.
	KeywordFallbackBelow int
	// KeywordMinScore is the minimum keyword-overlap score kept.
	KeywordMinScore float64
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = 5
	}
	if o.KeywordFallbackBelow <= 0 {
		o.KeywordFallbackBelow = 5
	}
	if o.KeywordMinScore <= 0 {
		o.KeywordMinScore = 0.15
	}
	return o
}
