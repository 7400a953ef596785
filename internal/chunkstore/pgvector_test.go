package chunkstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/luminacare/assistant/internal/retrieval"
)

func TestChunkCounts(t *testing.T) {
	docA, docB := uuid.New(), uuid.New()

	tests := []struct {
		name   string
		chunks []retrieval.Chunk
		want   map[uuid.UUID]int
	}{
		{
			name: "single document shrink cutoff",
			chunks: []retrieval.Chunk{
				{DocumentID: docA, Index: 0},
				{DocumentID: docA, Index: 1},
				{DocumentID: docA, Index: 2},
			},
			// A document previously stored with more chunks gets trimmed
			// from index 3 up.
			want: map[uuid.UUID]int{docA: 3},
		},
		{
			name: "multiple documents counted independently",
			chunks: []retrieval.Chunk{
				{DocumentID: docA, Index: 0},
				{DocumentID: docB, Index: 0},
				{DocumentID: docA, Index: 1},
			},
			want: map[uuid.UUID]int{docA: 2, docB: 1},
		},
		{
			name:   "empty set",
			chunks: nil,
			want:   map[uuid.UUID]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunkCounts(tt.chunks))
		})
	}
}
