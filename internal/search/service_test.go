package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminacare/assistant/internal/answer"
	"github.com/luminacare/assistant/internal/auth"
	"github.com/luminacare/assistant/internal/config"
	"github.com/luminacare/assistant/internal/models"
	"github.com/luminacare/assistant/internal/retrieval"
)

type fakeDocs struct {
	docs []models.Document
	err  error
}

func (f *fakeDocs) ListForSearch(_ context.Context, ids []uuid.UUID) ([]models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(ids) == 0 {
		return f.docs, nil
	}
	var out []models.Document
	for _, d := range f.docs {
		for _, id := range ids {
			if d.ID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

type fakeChunkStore struct {
	chunks []retrieval.Chunk
	err    error
}

func (f *fakeChunkStore) Upsert(context.Context, uuid.UUID, []retrieval.Chunk) error {
	return errors.New("not used")
}

func (f *fakeChunkStore) GetByDocuments(context.Context, uuid.UUID, []uuid.UUID) ([]retrieval.Chunk, error) {
	return f.chunks, f.err
}

func (f *fakeChunkStore) DeleteByDocument(context.Context, uuid.UUID, uuid.UUID) error {
	return errors.New("not used")
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

type fakeSynth struct {
	calls  int
	result *answer.Result
	err    error
	inputs []answer.Input
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string, inputs []answer.Input) (*answer.Result, error) {
	f.calls++
	f.inputs = inputs
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testContext() context.Context {
	return auth.WithUser(context.Background(), &auth.User{ID: uuid.New(), Email: "nurse@example.com"})
}

func testConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		MaxResults:           5,
		KeywordFallbackBelow: 5,
		KeywordMinScore:      0.15,
		CharsPerPage:         2800,
	}
}

func TestSearchNoDocuments(t *testing.T) {
	synth := &fakeSynth{}
	svc := NewService(&fakeDocs{}, &fakeChunkStore{}, &fakeEmbedder{}, synth, testConfig())

	resp, err := svc.Search(testContext(), Request{Query: "overtime policy"})
	require.NoError(t, err)
	assert.Equal(t, answer.NoDocumentsAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.NotNil(t, resp.Sources)
	// No model call for a designed empty state.
	assert.Zero(t, synth.calls)
}

func TestSearchNoChunks(t *testing.T) {
	doc := models.Document{ID: uuid.New(), Title: "Handbook", Status: models.DocStatusReady}
	synth := &fakeSynth{}
	svc := NewService(&fakeDocs{docs: []models.Document{doc}}, &fakeChunkStore{}, &fakeEmbedder{}, synth, testConfig())

	resp, err := svc.Search(testContext(), Request{Query: "overtime policy"})
	require.NoError(t, err)
	assert.Equal(t, answer.NoContentAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, synth.calls)
}

func TestSearchHappyPath(t *testing.T) {
	doc := models.Document{
		ID:     uuid.New(),
		Title:  "Employee Handbook",
		URL:    "https://docs.google.com/document/d/abc123",
		Status: models.DocStatusReady,
	}
	chunks := []retrieval.Chunk{
		{ID: uuid.New(), DocumentID: doc.ID, Index: 0, Content: "Overtime is paid at 1.5x base.", StartOffset: 0, Embedding: []float32{1, 0}},
		{ID: uuid.New(), DocumentID: doc.ID, Index: 1, Content: "Shifts are assigned weekly.", StartOffset: 5600, Embedding: []float32{0.9, 0.3}},
	}
	synth := &fakeSynth{result: &answer.Result{Answer: "Overtime is paid at 1.5x [Source 1].", TokensUsed: 200}}

	svc := NewService(
		&fakeDocs{docs: []models.Document{doc}},
		&fakeChunkStore{chunks: chunks},
		&fakeEmbedder{vec: []float32{1, 0}},
		synth,
		testConfig(),
	)

	resp, err := svc.Search(testContext(), Request{Query: "overtime rate"})
	require.NoError(t, err)
	assert.Equal(t, "Overtime is paid at 1.5x [Source 1].", resp.Answer)
	assert.Equal(t, 200, resp.TokensUsed)
	require.NotEmpty(t, resp.Sources)

	first := resp.Sources[0]
	assert.Equal(t, "Employee Handbook", first.DocumentTitle)
	assert.Equal(t, doc.URL, first.DocumentURL)
	assert.Equal(t, 1, first.PageNumber)
	assert.InDelta(t, 1.0, first.Confidence, 1e-6)
	assert.Contains(t, first.RelevantContent, "Overtime")

	// The synthesizer saw the ranked chunks with document metadata.
	require.NotEmpty(t, synth.inputs)
	assert.Equal(t, "Employee Handbook", synth.inputs[0].DocumentTitle)
}

func TestSearchEmbeddingFailureFallsBackToKeywords(t *testing.T) {
	doc := models.Document{ID: uuid.New(), Title: "Handbook", Status: models.DocStatusReady}
	chunks := []retrieval.Chunk{
		{ID: uuid.New(), DocumentID: doc.ID, Index: 0, Content: "Overtime approval requires a supervisor.", Embedding: []float32{1, 0}},
	}
	synth := &fakeSynth{result: &answer.Result{Answer: "ok"}}

	svc := NewService(
		&fakeDocs{docs: []models.Document{doc}},
		&fakeChunkStore{chunks: chunks},
		&fakeEmbedder{err: errors.New("embedding provider down")},
		synth,
		testConfig(),
	)

	resp, err := svc.Search(testContext(), Request{Query: "overtime approval"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Answer)
	assert.Equal(t, 1, synth.calls)
}

func TestSearchSynthesisFailureIsHard(t *testing.T) {
	doc := models.Document{ID: uuid.New(), Title: "Handbook", Status: models.DocStatusReady}
	chunks := []retrieval.Chunk{
		{ID: uuid.New(), DocumentID: doc.ID, Index: 0, Content: "Overtime content.", Embedding: []float32{1, 0}},
	}
	svc := NewService(
		&fakeDocs{docs: []models.Document{doc}},
		&fakeChunkStore{chunks: chunks},
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeSynth{err: errors.New("model call failed")},
		testConfig(),
	)

	_, err := svc.Search(testContext(), Request{Query: "overtime"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesize answer")
}

func TestSearchStoreFailureIsHard(t *testing.T) {
	doc := models.Document{ID: uuid.New(), Title: "Handbook", Status: models.DocStatusReady}
	svc := NewService(
		&fakeDocs{docs: []models.Document{doc}},
		&fakeChunkStore{err: errors.New("connection refused")},
		&fakeEmbedder{},
		&fakeSynth{},
		testConfig(),
	)

	_, err := svc.Search(testContext(), Request{Query: "overtime"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load chunks")
}

func TestSearchFastVariantWidensResults(t *testing.T) {
	doc := models.Document{ID: uuid.New(), Title: "Handbook", Status: models.DocStatusReady}
	var chunks []retrieval.Chunk
	for i := 0; i < 12; i++ {
		chunks = append(chunks, retrieval.Chunk{
			ID: uuid.New(), DocumentID: doc.ID, Index: i,
			Content:   "overtime policy section",
			Embedding: []float32{1, float32(i) * 0.01},
		})
	}
	synth := &fakeSynth{result: &answer.Result{Answer: "ok"}}
	svc := NewService(
		&fakeDocs{docs: []models.Document{doc}},
		&fakeChunkStore{chunks: chunks},
		&fakeEmbedder{vec: []float32{1, 0}},
		synth,
		testConfig(),
	)

	resp, err := svc.Search(testContext(), Request{Query: "overtime policy", Fast: true})
	require.NoError(t, err)
	assert.Len(t, resp.Sources, fastMaxResults)
}

func TestSearchScopeFilter(t *testing.T) {
	inScope := models.Document{ID: uuid.New(), Title: "In Scope", Status: models.DocStatusReady}
	outOfScope := models.Document{ID: uuid.New(), Title: "Out of Scope", Status: models.DocStatusReady}
	chunks := []retrieval.Chunk{
		{ID: uuid.New(), DocumentID: inScope.ID, Index: 0, Content: "overtime details", Embedding: []float32{1, 0}},
	}
	synth := &fakeSynth{result: &answer.Result{Answer: "ok"}}
	svc := NewService(
		&fakeDocs{docs: []models.Document{inScope, outOfScope}},
		&fakeChunkStore{chunks: chunks},
		&fakeEmbedder{vec: []float32{1, 0}},
		synth,
		testConfig(),
	)

	resp, err := svc.Search(testContext(), Request{
		Query:       "overtime",
		DocumentIDs: []uuid.UUID{inScope.ID},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "In Scope", resp.Sources[0].DocumentTitle)
}

func TestExcerptTruncates(t *testing.T) {
	long := strings.Repeat("a", excerptLength+50)
	got := excerpt("  " + long + "  ")
	assert.Len(t, got, excerptLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
