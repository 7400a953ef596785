package chunker

import (
	"strings"
)

type Chunker interface {
	Chunk(text string, opts ChunkOptions) []TextChunk
}

type ChunkOptions struct {
	ChunkSize    int    // target chunk size in characters
	ChunkOverlap int    // overlap between consecutive chunks
	Strategy     string // "fixed" or "recursive"
}

// TextChunk carries its byte offset within the source text; the answer
// layer uses Start to estimate page numbers.
type TextChunk struct {
	Content string
	Index   int
	Start   int
	End     int
}

func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Strategy:     "recursive",
	}
}

type defaultChunker struct{}

func New() Chunker {
	return &defaultChunker{}
}

func (c *defaultChunker) Chunk(text string, opts ChunkOptions) []TextChunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}

	switch opts.Strategy {
	case "fixed":
		return chunkFixed(text, opts)
	default:
		return chunkRecursive(text, opts)
	}
}

func chunkFixed(text string, opts ChunkOptions) []TextChunk {
	var chunks []TextChunk
	idx := 0

	step := opts.ChunkSize - opts.ChunkOverlap
	if step <= 0 {
		step = opts.ChunkSize
	}

	for start := 0; start < len(text); start += step {
		end := start + opts.ChunkSize
		if end > len(text) {
			end = len(text)
		}

		content := text[start:end]
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, TextChunk{
				Content: content,
				Index:   idx,
				Start:   start,
				End:     end,
			})
			idx++
		}

		if end == len(text) {
			break
		}
	}

	return chunks
}

// chunkRecursive splits on progressively finer separators until pieces fit
// the target size, preferring paragraph and sentence boundaries.
func chunkRecursive(text string, opts ChunkOptions) []TextChunk {
	separators := []string{"\n\n", "\n", ". ", " "}

	var chunks []TextChunk
	idx := 0
	offset := 0

	for _, part := range splitRecursive(text, separators, opts.ChunkSize) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			offset += len(part)
			continue
		}

		// Offset of the trimmed content within the original text.
		start := offset + strings.Index(part, trimmed)
		chunks = append(chunks, TextChunk{
			Content: trimmed,
			Index:   idx,
			Start:   start,
			End:     start + len(trimmed),
		})
		idx++
		offset += len(part)
	}

	return chunks
}

// splitRecursive partitions text into pieces no larger than chunkSize,
// preserving every byte so callers can reconstruct offsets. Separators stay
// attached to the preceding piece.
func splitRecursive(text string, separators []string, chunkSize int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	if len(separators) == 0 {
		var result []string
		for i := 0; i < len(text); i += chunkSize {
			end := i + chunkSize
			if end > len(text) {
				end = len(text)
			}
			result = append(result, text[i:end])
		}
		return result
	}

	sep := separators[0]
	parts := strings.SplitAfter(text, sep)

	var result []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if current.Len() <= chunkSize {
			result = append(result, current.String())
		} else {
			result = append(result, splitRecursive(current.String(), separators[1:], chunkSize)...)
		}
		current.Reset()
	}

	for _, part := range parts {
		if current.Len() > 0 && current.Len()+len(part) > chunkSize {
			flush()
		}
		current.WriteString(part)
	}
	flush()

	return result
}
