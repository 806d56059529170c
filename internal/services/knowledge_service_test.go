package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentrashield/backend-go/internal/extract"
	"github.com/sentrashield/backend-go/internal/knowledge"
)

// fakeVectorStore 测试用向量存储，按用户记录已索引的分块
type fakeVectorStore struct {
	indexed  map[string][]knowledge.Chunk
	matches  map[string][]knowledge.SearchMatch
	buildErr error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{
		indexed: make(map[string][]knowledge.Chunk),
		matches: make(map[string][]knowledge.SearchMatch),
	}
}

func (s *fakeVectorStore) BuildIndex(ctx context.Context, userID string, chunks []knowledge.Chunk) (int, error) {
	if s.buildErr != nil {
		return 0, s.buildErr
	}
	s.indexed[userID] = chunks
	return len(chunks), nil
}

func (s *fakeVectorStore) Search(ctx context.Context, userID, question string, topK int, threshold float64) ([]knowledge.SearchMatch, error) {
	return s.matches[question], nil
}

func (s *fakeVectorStore) Exists(ctx context.Context, userID string) bool {
	_, ok := s.indexed[userID]
	return ok
}

func (s *fakeVectorStore) Delete(ctx context.Context, userID string) (bool, error) {
	if _, ok := s.indexed[userID]; !ok {
		return false, nil
	}
	delete(s.indexed, userID)
	return true, nil
}

func (s *fakeVectorStore) Ready() bool { return true }

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildFromFiles(t *testing.T) {
	dir := t.TempDir()
	policy := writeDoc(t, dir, "policy.txt", "Data at rest is encrypted with AES-256.")
	training := writeDoc(t, dir, "training.md", "Employees complete annual security training.")

	store := newFakeVectorStore()
	svc := NewKnowledgeService(store, knowledge.NewChunker(600, 100), extract.NewTextExtractor())

	count, err := svc.BuildFromFiles(context.Background(), "alice", []string{policy, training})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, svc.Exists(context.Background(), "alice"))

	chunks := store.indexed["alice"]
	require.Len(t, chunks, 2)
	assert.Equal(t, "policy.txt", chunks[0].Source)
	assert.Equal(t, "training.md", chunks[1].Source)
}

func TestBuildFromFilesSkipsFailedExtraction(t *testing.T) {
	dir := t.TempDir()
	policy := writeDoc(t, dir, "policy.txt", "Data at rest is encrypted.")

	store := newFakeVectorStore()
	svc := NewKnowledgeService(store, knowledge.NewChunker(600, 100), extract.NewTextExtractor())

	// 不支持的文件被跳过，其余文件正常入库
	count, err := svc.BuildFromFiles(context.Background(), "alice", []string{policy, filepath.Join(dir, "report.pdf")})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBuildFromFilesNoChunks(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewKnowledgeService(store, knowledge.NewChunker(600, 100), extract.NewTextExtractor())

	_, err := svc.BuildFromFiles(context.Background(), "alice", []string{"/nonexistent/report.pdf"})
	assert.Error(t, err)

	_, err = svc.BuildFromFiles(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestBuildFromFilesStoreError(t *testing.T) {
	dir := t.TempDir()
	policy := writeDoc(t, dir, "policy.txt", "Data at rest is encrypted.")

	store := newFakeVectorStore()
	store.buildErr = errors.New("milvus down")
	svc := NewKnowledgeService(store, knowledge.NewChunker(600, 100), extract.NewTextExtractor())

	_, err := svc.BuildFromFiles(context.Background(), "alice", []string{policy})
	assert.Error(t, err)
}

func TestKnowledgeServiceDelete(t *testing.T) {
	store := newFakeVectorStore()
	store.indexed["alice"] = []knowledge.Chunk{{Text: "x", Source: "a.txt"}}
	svc := NewKnowledgeService(store, knowledge.NewChunker(600, 100), extract.NewTextExtractor())

	deleted, err := svc.Delete(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, deleted)
}
