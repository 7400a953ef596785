package drive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	exports   map[string]string // mimeType -> body
	exportErr map[string]error
	download  string
	dlErr     error

	exportCalls   []string
	downloadCalls int
}

func (f *fakeExporter) Export(_ context.Context, _, mimeType string) (io.ReadCloser, error) {
	f.exportCalls = append(f.exportCalls, mimeType)
	if err := f.exportErr[mimeType]; err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(f.exports[mimeType])), nil
}

func (f *fakeExporter) Download(context.Context, string) (io.ReadCloser, error) {
	f.downloadCalls++
	if f.dlErr != nil {
		return nil, f.dlErr
	}
	return io.NopCloser(strings.NewReader(f.download)), nil
}

func longBody(prefix string) string {
	return prefix + strings.Repeat(" filler content", 10)
}

func TestFetchTextPrefersPlainText(t *testing.T) {
	exp := &fakeExporter{exports: map[string]string{
		"text/plain": longBody("plain body"),
		"text/csv":   longBody("csv body"),
	}}
	f := NewFetcher(exp, 100)

	got, err := f.FetchText(context.Background(), "file-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "plain body"))
	assert.Equal(t, []string{"text/plain"}, exp.exportCalls)
	assert.Zero(t, exp.downloadCalls)
}

func TestFetchTextFallsThroughToCSV(t *testing.T) {
	exp := &fakeExporter{
		exports:   map[string]string{"text/csv": longBody("csv body")},
		exportErr: map[string]error{"text/plain": errors.New("unsupported export")},
	}
	f := NewFetcher(exp, 100)

	got, err := f.FetchText(context.Background(), "sheet-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "csv body"))
	assert.Equal(t, []string{"text/plain", "text/csv"}, exp.exportCalls)
}

func TestFetchTextFallsThroughToDownload(t *testing.T) {
	exp := &fakeExporter{
		exportErr: map[string]error{
			"text/plain": errors.New("not a workspace file"),
			"text/csv":   errors.New("not a workspace file"),
		},
		download: longBody("downloaded body"),
	}
	f := NewFetcher(exp, 100)

	got, err := f.FetchText(context.Background(), "pdf-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "downloaded body"))
	assert.Equal(t, 1, exp.downloadCalls)
}

func TestFetchTextShortBodiesRejected(t *testing.T) {
	// All bodies under the 50-char threshold: nothing usable.
	exp := &fakeExporter{
		exports:  map[string]string{"text/plain": "tiny", "text/csv": "   \n  "},
		download: "also tiny",
	}
	f := NewFetcher(exp, 100)

	_, err := f.FetchText(context.Background(), "empty-doc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestFetchTextAllFailures(t *testing.T) {
	exp := &fakeExporter{
		exportErr: map[string]error{
			"text/plain": errors.New("boom"),
			"text/csv":   errors.New("boom"),
		},
		dlErr: errors.New("boom"),
	}
	f := NewFetcher(exp, 100)

	_, err := f.FetchText(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestExtractFileID(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
		ok     bool
	}{
		{
			name:   "docs url",
			rawURL: "https://docs.google.com/document/d/1AbC_dEf-123/edit",
			want:   "1AbC_dEf-123",
			ok:     true,
		},
		{
			name:   "sheets url",
			rawURL: "https://docs.google.com/spreadsheets/d/xyz789/edit#gid=0",
			want:   "xyz789",
			ok:     true,
		},
		{
			name:   "slides url",
			rawURL: "https://docs.google.com/presentation/d/slide-id_1/present",
			want:   "slide-id_1",
			ok:     true,
		},
		{
			name:   "drive file url",
			rawURL: "https://drive.google.com/file/d/fileid42/view?usp=sharing",
			want:   "fileid42",
			ok:     true,
		},
		{
			name:   "open with id param",
			rawURL: "https://drive.google.com/open?id=param-id-7",
			want:   "param-id-7",
			ok:     true,
		},
		{
			name:   "bare id passes through",
			rawURL: "1AbC_dEf-123",
			want:   "1AbC_dEf-123",
			ok:     true,
		},
		{
			name:   "unrelated url rejected",
			rawURL: "https://example.com/notes.txt",
			ok:     false,
		},
		{
			name:   "empty string rejected",
			rawURL: "",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFileID(tt.rawURL)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
