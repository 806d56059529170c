package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/sentrashield/backend-go/internal/logger"
	"go.uber.org/zap"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address          string
	Username         string
	Password         string
	CollectionPrefix string
	Database         string
	UseTLS           bool
	VectorSize       int
	Timeout          time.Duration
}

// milvusVectorStore 基于Milvus的向量存储，每个用户一个集合
type milvusVectorStore struct {
	milvusClient     client.Client
	embedder         Embedder
	collectionPrefix string
	vectorSize       int
}

// NewMilvusVectorStore 创建Milvus向量存储
func NewMilvusVectorStore(opts MilvusOptions, embedder Embedder) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.CollectionPrefix == "" {
		opts.CollectionPrefix = "qa_vectors"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 384
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	milvusClient, err := client.NewClient(
		context.Background(),
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &milvusVectorStore{
		milvusClient:     milvusClient,
		embedder:         embedder,
		collectionPrefix: opts.CollectionPrefix,
		vectorSize:       opts.VectorSize,
	}, nil
}

func (s *milvusVectorStore) collectionName(userID string) string {
	return fmt.Sprintf("%s_%s", s.collectionPrefix, sanitizeCollectionID(userID))
}

// sanitizeCollectionID Milvus集合名只允许字母、数字和下划线
func sanitizeCollectionID(id string) string {
	var builder strings.Builder
	builder.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	return builder.String()
}

func (s *milvusVectorStore) createCollection(ctx context.Context, name string) error {
	schema := &entity.Schema{
		CollectionName: name,
		Description:    "questionnaire knowledge base vectors",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     false,
			},
			{
				Name:     "content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", s.vectorSize),
				},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// 向量已归一化，内积即余弦相似度
	var index entity.Index
	index, err := entity.NewIndexHNSW(entity.IP, 8, 64)
	if err != nil {
		// HNSW不可用时退回IVF_FLAT
		index, err = entity.NewIndexIvfFlat(entity.IP, 128)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	if err := s.milvusClient.CreateIndex(ctx, name, "vector", index, false); err != nil {
		logger.Warn("failed to create milvus index", zap.String("collection", name), zap.Error(err))
	}
	return nil
}

// BuildIndex 重建该用户的集合：删除旧集合后按输入顺序向量化并写入全部分块
func (s *milvusVectorStore) BuildIndex(ctx context.Context, userID string, chunks []Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks to index")
	}

	name := s.collectionName(userID)

	hasCollection, err := s.milvusClient.HasCollection(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to check collection: %w", err)
	}
	if hasCollection {
		if err := s.milvusClient.DropCollection(ctx, name); err != nil {
			return 0, fmt.Errorf("failed to drop collection: %w", err)
		}
	}
	if err := s.createCollection(ctx, name); err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(chunks))
	contents := make([]string, 0, len(chunks))
	sources := make([]string, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))

	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		if len(vec) != s.vectorSize {
			return 0, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.vectorSize, len(vec))
		}
		ids = append(ids, int64(i))
		contents = append(contents, chunk.Text)
		sources = append(sources, chunk.Source)
		vectors = append(vectors, vec)
	}

	idColumn := entity.NewColumnInt64("id", ids)
	contentColumn := entity.NewColumnVarChar("content", contents)
	sourceColumn := entity.NewColumnVarChar("source", sources)
	vectorColumn := entity.NewColumnFloatVector("vector", s.vectorSize, vectors)

	if _, err := s.milvusClient.Insert(ctx, name, "", idColumn, contentColumn, sourceColumn, vectorColumn); err != nil {
		return 0, fmt.Errorf("milvus insert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, name, false); err != nil {
		logger.Warn("failed to flush milvus collection", zap.String("collection", name), zap.Error(err))
	}

	return len(chunks), nil
}

func (s *milvusVectorStore) Search(ctx context.Context, userID string, question string, topK int, threshold float64) ([]SearchMatch, error) {
	name := s.collectionName(userID)

	hasCollection, err := s.milvusClient.HasCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if !hasCollection {
		return nil, fmt.Errorf("no collection found for user %s", userID)
	}

	if err := s.milvusClient.LoadCollection(ctx, name, false); err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	if topK <= 0 {
		topK = 3
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	queryVector := entity.FloatVector(vec)
	searchResults, err := s.milvusClient.Search(
		ctx,
		name,
		[]string{},
		"",
		[]string{"content", "source"},
		[]entity.Vector{queryVector},
		"vector",
		entity.IP,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return []SearchMatch{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []SearchMatch{}, nil
	}

	var contents []string
	var sources []string
	for _, field := range result.Fields {
		switch field.Name() {
		case "content":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				contents = val.Data()
			}
		case "source":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				sources = val.Data()
			}
		}
	}

	matches := make([]SearchMatch, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		score := float64(0)
		if i < len(result.Scores) {
			score = float64(result.Scores[i])
		}
		if score < threshold {
			continue
		}

		content := ""
		if i < len(contents) {
			content = contents[i]
		}
		source := ""
		if i < len(sources) {
			source = sources[i]
		}
		matches = append(matches, SearchMatch{
			Text:   content,
			Source: source,
			Score:  score,
		})
	}
	return matches, nil
}

func (s *milvusVectorStore) Exists(ctx context.Context, userID string) bool {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collectionName(userID))
	return err == nil && hasCollection
}

func (s *milvusVectorStore) Delete(ctx context.Context, userID string) (bool, error) {
	name := s.collectionName(userID)
	hasCollection, err := s.milvusClient.HasCollection(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection: %w", err)
	}
	if !hasCollection {
		return false, nil
	}
	if err := s.milvusClient.DropCollection(ctx, name); err != nil {
		return false, fmt.Errorf("failed to drop collection: %w", err)
	}
	return true, nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
