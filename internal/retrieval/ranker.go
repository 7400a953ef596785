package retrieval

import "sort"

// adaptiveThresholdFloor is the lowest similarity cutoff the vector
// strategy will apply, regardless of how weak the top score is.
const adaptiveThresholdFloor = 0.1

// rescueCount is how many top chunks survive when the adaptive threshold
// would otherwise exclude every candidate.
const rescueCount = 3

// fallbackScore is the nominal confidence assigned by the longest-content
// last resort.
const fallbackScore = 0.05

// A strategy ranks chunks against a query. queryVec may be nil. Strategies
// are pure: same input, same ordered output.
type strategy func(query string, queryVec []float32, chunks []Chunk, opts Options) []ScoredChunk

// Rank runs the strategy chain — vector similarity, keyword overlap,
// longest content — merging keyword results in when vector scoring came up
// short. It never returns an empty set for a non-empty chunk collection.
func Rank(query string, queryVec []float32, chunks []Chunk, opts Options) []ScoredChunk {
	opts = opts.withDefaults()
	if len(chunks) == 0 {
		return nil
	}

	results := vectorStrategy(query, queryVec, chunks, opts)

	if len(results) < opts.KeywordFallbackBelow {
		results = mergeResults(results, keywordStrategy(query, queryVec, chunks, opts), opts.MaxResults)
	}

	if len(results) == 0 {
		results = longestContentStrategy(query, queryVec, chunks, opts)
	}

	return results
}

// vectorStrategy scores every chunk carrying an embedding of the query
// vector's dimensionality, keeps those above the adaptive threshold
// max(0.1, top*0.4), and rescues the top 3 when nothing clears it.
func vectorStrategy(_ string, queryVec []float32, chunks []Chunk, opts Options) []ScoredChunk {
	if len(queryVec) == 0 {
		return nil
	}

	scored := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		// Only embeddings of the query vector's dimensionality are
		// comparable. Unembedded chunks and stale vectors from an older
		// embedding model are left to the keyword strategies.
		if len(c.Embedding) != len(queryVec) {
			continue
		}
		scored = append(scored, ScoredChunk{
			Chunk:  c,
			Score:  CosineSimilarity(queryVec, c.Embedding),
			Method: MethodVector,
		})
	}
	if len(scored) == 0 {
		return nil
	}

	// Ties keep original chunk order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	threshold := scored[0].Score * 0.4
	if threshold < adaptiveThresholdFloor {
		threshold = adaptiveThresholdFloor
	}

	kept := scored[:0:0]
	for _, s := range scored {
		if s.Score >= threshold {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		n := rescueCount
		if n > len(scored) {
			n = len(scored)
		}
		kept = scored[:n]
	}

	if len(kept) > opts.MaxResults {
		kept = kept[:opts.MaxResults]
	}
	return kept
}

// keywordStrategy scores chunks by query-token overlap. Used when there is
// no query embedding, or to top up a thin vector result set.
func keywordStrategy(query string, _ []float32, chunks []Chunk, opts Options) []ScoredChunk {
	tokens := QueryTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	var scored []ScoredChunk
	for _, c := range chunks {
		score := keywordScore(tokens, c.Content)
		if score <= opts.KeywordMinScore {
			continue
		}
		scored = append(scored, ScoredChunk{Chunk: c, Score: score, Method: MethodKeyword})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > opts.MaxResults {
		scored = scored[:opts.MaxResults]
	}
	return scored
}

// longestContentStrategy is the last resort when neither vectors nor
// keywords produced anything: longer chunks are more likely to carry
// usable information, so return the longest few at a nominal confidence.
func longestContentStrategy(_ string, _ []float32, chunks []Chunk, _ Options) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, ScoredChunk{Chunk: c, Score: fallbackScore, Method: MethodFallback})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return len(scored[i].Content) > len(scored[j].Content)
	})

	if len(scored) > rescueCount {
		scored = scored[:rescueCount]
	}
	return scored
}

// mergeResults appends extras not already present, deduplicating by
// (document id, chunk index), and caps the merged set.
func mergeResults(base, extra []ScoredChunk, limit int) []ScoredChunk {
	type key struct {
		doc   string
		index int
	}
	seen := make(map[key]bool, len(base))
	for _, s := range base {
		seen[key{s.DocumentID.String(), s.Index}] = true
	}

	merged := base
	for _, s := range extra {
		k := key{s.DocumentID.String(), s.Index}
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, s)
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
