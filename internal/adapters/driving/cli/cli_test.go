package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

// mockIngestion implements driving.IngestionService for testing.
type mockIngestion struct {
	results  map[string]*domain.IngestResult
	ingested []string
	docs     []domain.Document
	deleted  []string
}

func (m *mockIngestion) Ingest(_ context.Context, fileName, _, _ string) (*domain.IngestResult, error) {
	m.ingested = append(m.ingested, fileName)
	if result, ok := m.results[fileName]; ok {
		return result, nil
	}
	return &domain.IngestResult{DocumentID: "doc-" + fileName, FileName: fileName, ChunkCount: 1}, nil
}

func (m *mockIngestion) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockIngestion) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

// mockQuery implements driving.QueryService for testing.
type mockQuery struct {
	answer       *domain.Answer
	lastQuestion string
	lastOpts     domain.QueryOptions
}

func (m *mockQuery) Answer(_ context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	return m.answer, nil
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		SetServices(nil, nil)
		queryTopK = 0
		queryProvider = ""
		queryJSON = false
		documentsJSON = false
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ragstack")
}

func TestQueryCommand(t *testing.T) {
	query := &mockQuery{answer: &domain.Answer{
		Question: "how?",
		Answer:   "Like this.",
		Sources: []domain.Source{
			{FileName: "guide.md", ChunkIndex: 2, Preview: "a preview"},
		},
		ChunksUsed:   1,
		ProviderUsed: "ollama",
	}}
	SetServices(&mockIngestion{}, query)

	out, err := runCommand(t, "query", "how?", "--top-k", "3", "--provider", "ollama")
	require.NoError(t, err)

	assert.Equal(t, "how?", query.lastQuestion)
	assert.Equal(t, 3, query.lastOpts.TopK)
	assert.Equal(t, "ollama", query.lastOpts.Provider)

	assert.Contains(t, out, "Like this.")
	assert.Contains(t, out, "guide.md (chunk 2)")
}

func TestQueryCommandWithoutService(t *testing.T) {
	SetServices(nil, nil)

	_, err := runCommand(t, "query", "anything?")
	assert.Error(t, err)
}

func TestIngestCommandFile(t *testing.T) {
	ingestion := &mockIngestion{}
	SetServices(ingestion, &mockQuery{})

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("some docs"), 0600))

	out, err := runCommand(t, "ingest", path)
	require.NoError(t, err)

	assert.Equal(t, []string{"notes.md"}, ingestion.ingested)
	assert.Contains(t, out, "Ingested notes.md")
}

func TestIngestCommandDirectory(t *testing.T) {
	ingestion := &mockIngestion{
		results: map[string]*domain.IngestResult{
			"old.md": {DocumentID: "doc-old", FileName: "old.md", ChunkCount: 2, AlreadyExisted: true},
		},
	}
	SetServices(ingestion, &mockQuery{})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.md"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("y"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.pdf"), []byte("z"), 0600))

	out, err := runCommand(t, "ingest", dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"old.md", "new.txt"}, ingestion.ingested)
	assert.Contains(t, out, "Skipped old.md")
	assert.Contains(t, out, "Ingested new.txt")
	assert.NotContains(t, out, "skip.pdf")
}

func TestDocumentsListCommand(t *testing.T) {
	ingestion := &mockIngestion{docs: []domain.Document{
		{ID: "doc-1", FileName: "guide.md", ChunkCount: 3},
	}}
	SetServices(ingestion, &mockQuery{})

	out, err := runCommand(t, "documents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "guide.md")
	assert.Contains(t, out, "doc-1")
}

func TestDocumentsDeleteCommand(t *testing.T) {
	ingestion := &mockIngestion{}
	SetServices(ingestion, &mockQuery{})

	out, err := runCommand(t, "documents", "delete", "doc-9")
	require.NoError(t, err)

	assert.Equal(t, []string{"doc-9"}, ingestion.deleted)
	assert.Contains(t, out, "Deleted doc-9")
}
