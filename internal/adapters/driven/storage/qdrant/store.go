// Package qdrant provides a Qdrant-backed vector store over gRPC. Chunks
// live in one collection with their embeddings; document records live in a
// companion collection with a placeholder vector, since Qdrant points always
// carry one.
package qdrant

import (
	"context"
	"fmt"
	"sort"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
	"github.com/rackmesa/ragstack/internal/logger"
)

// Default configuration values.
const (
	DefaultHost               = "localhost"
	DefaultPort               = 6334
	DefaultChunkCollection    = "ragstack_chunks"
	DefaultDocumentCollection = "ragstack_documents"
)

// scrollPageSize bounds Scroll requests when listing documents.
const scrollPageSize = 256

var _ driven.VectorStore = (*Store)(nil)

// Config holds configuration for the Qdrant store.
type Config struct {
	// Host is the Qdrant gRPC host (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// ChunkCollection names the collection holding chunk vectors.
	ChunkCollection string

	// DocumentCollection names the collection holding document records.
	DocumentCollection string
}

// Store is a Qdrant-based implementation of driven.VectorStore.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	chunkColl   string
	docColl     string
}

// NewStore connects to Qdrant and ensures the document collection exists.
// The chunk collection is created lazily on first insert, once the embedding
// dimensionality is known.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.ChunkCollection == "" {
		cfg.ChunkCollection = DefaultChunkCollection
	}
	if cfg.DocumentCollection == "" {
		cfg.DocumentCollection = DefaultDocumentCollection
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	s := &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		chunkColl:   cfg.ChunkCollection,
		docColl:     cfg.DocumentCollection,
	}

	// Document points carry a 1-dimensional placeholder vector.
	if err := s.ensureCollection(ctx, s.docColl, 1); err != nil {
		conn.Close()
		return nil, fmt.Errorf("qdrant: ensuring document collection: %w: %w", domain.ErrProviderUnavailable, err)
	}

	return s, nil
}

// ensureCollection creates the named collection if it does not exist.
func (s *Store) ensureCollection(ctx context.Context, name string, dims int) error {
	exists, err := s.collectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}
	logger.Debug("qdrant: created collection %s (%d dims)", name, dims)
	return nil
}

// collectionExists reports whether the named collection exists.
func (s *Store) collectionExists(ctx context.Context, name string) (bool, error) {
	resp, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("listing collections: %w", err)
	}
	for _, coll := range resp.GetCollections() {
		if coll.GetName() == name {
			return true, nil
		}
	}
	return false, nil
}

// FindDocumentByName returns the document with the given file name.
func (s *Store) FindDocumentByName(ctx context.Context, fileName string) (*domain.Document, error) {
	limit := uint32(1)
	resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
		CollectionName: s.docColl,
		Filter: &pb.Filter{
			Must: []*pb.Condition{fieldMatch("file_name", fileName)},
		},
		Limit:       &limit,
		WithPayload: withPayload(),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: finding document: %w: %w", domain.ErrProviderUnavailable, err)
	}
	if len(resp.GetResult()) == 0 {
		return nil, domain.ErrNotFound
	}
	return documentFromPoint(resp.GetResult()[0]), nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	resp, err := s.points.Get(ctx, &pb.GetPoints{
		CollectionName: s.docColl,
		Ids:            []*pb.PointId{pointID(id)},
		WithPayload:    withPayload(),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: getting document: %w: %w", domain.ErrProviderUnavailable, err)
	}
	if len(resp.GetResult()) == 0 {
		return nil, domain.ErrNotFound
	}
	return documentFromPoint(resp.GetResult()[0]), nil
}

// InsertDocument persists a new document and all of its chunks. Qdrant has
// no cross-collection transactions, so chunks are written first and removed
// again if the document record fails to land.
func (s *Store) InsertDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if _, err := s.FindDocumentByName(ctx, doc.FileName); err == nil {
		return domain.ErrAlreadyExists
	}

	dims, err := s.EmbeddingDimensions(ctx)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if dims == 0 {
			dims = len(chunk.Embedding)
		} else if len(chunk.Embedding) != dims {
			return fmt.Errorf("chunk %d has %d dimensions, collection has %d: %w",
				chunk.Index, len(chunk.Embedding), dims, domain.ErrDimensionMismatch)
		}
	}

	if dims > 0 {
		if err := s.ensureCollection(ctx, s.chunkColl, dims); err != nil {
			return fmt.Errorf("qdrant: ensuring chunk collection: %w: %w", domain.ErrProviderUnavailable, err)
		}
	}

	wait := true

	if len(chunks) > 0 {
		points := make([]*pb.PointStruct, 0, len(chunks))
		for _, chunk := range chunks {
			points = append(points, &pb.PointStruct{
				Id: pointID(chunk.ID),
				Vectors: &pb.Vectors{
					VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: chunk.Embedding}},
				},
				Payload: map[string]*pb.Value{
					"document_id": stringValue(chunk.DocumentID),
					"file_name":   stringValue(doc.FileName),
					"content":     stringValue(chunk.Content),
					"chunk_index": intValue(int64(chunk.Index)),
				},
			})
		}

		_, err = s.points.Upsert(ctx, &pb.UpsertPoints{
			CollectionName: s.chunkColl,
			Points:         points,
			Wait:           &wait,
		})
		if err != nil {
			return fmt.Errorf("qdrant: upserting chunks: %w: %w", domain.ErrProviderUnavailable, err)
		}
	}

	ingestedAt := doc.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	_, err = s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.docColl,
		Points: []*pb.PointStruct{{
			Id: pointID(doc.ID),
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: []float32{0}}},
			},
			Payload: map[string]*pb.Value{
				"file_name":   stringValue(doc.FileName),
				"file_path":   stringValue(doc.FilePath),
				"content":     stringValue(doc.Content),
				"ingested_at": stringValue(ingestedAt.Format(time.RFC3339Nano)),
				"chunk_count": intValue(int64(len(chunks))),
			},
		}},
		Wait: &wait,
	})
	if err != nil {
		// Roll back the chunk writes so a retry starts clean.
		if cleanupErr := s.deleteChunksByDocument(ctx, doc.ID); cleanupErr != nil {
			logger.Warn("qdrant: cleanup after failed insert: %v", cleanupErr)
		}
		return fmt.Errorf("qdrant: upserting document: %w: %w", domain.ErrProviderUnavailable, err)
	}

	return nil
}

// ListDocuments returns all documents ordered by file name, without their
// full content.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	var offset *pb.PointId
	limit := uint32(scrollPageSize)

	for {
		resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: s.docColl,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    withPayload(),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: listing documents: %w: %w", domain.ErrProviderUnavailable, err)
		}

		for _, point := range resp.GetResult() {
			doc := documentFromPoint(point)
			doc.Content = ""
			docs = append(docs, *doc)
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FileName < docs[j].FileName
	})
	return docs, nil
}

// DeleteDocument removes a document and all of its chunks.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.GetDocument(ctx, id); err != nil {
		return err
	}

	if err := s.deleteChunksByDocument(ctx, id); err != nil {
		return fmt.Errorf("qdrant: deleting chunks: %w: %w", domain.ErrProviderUnavailable, err)
	}

	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.docColl,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: []*pb.PointId{pointID(id)}},
			},
		},
		Wait: &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant: deleting document: %w: %w", domain.ErrProviderUnavailable, err)
	}
	return nil
}

// deleteChunksByDocument removes all chunk points for a document.
func (s *Store) deleteChunksByDocument(ctx context.Context, docID string) error {
	exists, err := s.collectionExists(ctx, s.chunkColl)
	if err != nil || !exists {
		return err
	}

	wait := true
	_, err = s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.chunkColl,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{fieldMatch("document_id", docID)},
				},
			},
		},
		Wait: &wait,
	})
	return err
}

// NearestChunks searches the chunk collection and returns up to k results
// ordered by ascending cosine distance. Qdrant scores cosine as similarity,
// so distance is 1 minus the score.
func (s *Store) NearestChunks(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	exists, err := s.collectionExists(ctx, s.chunkColl)
	if err != nil {
		return nil, fmt.Errorf("qdrant: checking chunk collection: %w: %w", domain.ErrProviderUnavailable, err)
	}
	if !exists {
		return nil, nil
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.chunkColl,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    withPayload(),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: searching chunks: %w: %w", domain.ErrProviderUnavailable, err)
	}

	hits := make([]domain.RetrievedChunk, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		payload := point.GetPayload()
		hits = append(hits, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				ID:         point.GetId().GetUuid(),
				DocumentID: payload["document_id"].GetStringValue(),
				Content:    payload["content"].GetStringValue(),
				Index:      int(payload["chunk_index"].GetIntegerValue()),
			},
			FileName: payload["file_name"].GetStringValue(),
			Distance: 1 - float64(point.GetScore()),
		})
	}
	return hits, nil
}

// EmbeddingDimensions returns the chunk collection's vector size, or zero
// when the collection has not been created yet.
func (s *Store) EmbeddingDimensions(ctx context.Context) (int, error) {
	exists, err := s.collectionExists(ctx, s.chunkColl)
	if err != nil {
		return 0, fmt.Errorf("qdrant: checking chunk collection: %w: %w", domain.ErrProviderUnavailable, err)
	}
	if !exists {
		return 0, nil
	}

	resp, err := s.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: s.chunkColl})
	if err != nil {
		return 0, fmt.Errorf("qdrant: getting collection info: %w: %w", domain.ErrProviderUnavailable, err)
	}

	params := resp.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return 0, nil
	}
	return int(params.GetSize()), nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// documentFromPoint rebuilds a document from a stored point's payload.
func documentFromPoint(point *pb.RetrievedPoint) *domain.Document {
	payload := point.GetPayload()
	doc := &domain.Document{
		ID:         point.GetId().GetUuid(),
		FileName:   payload["file_name"].GetStringValue(),
		FilePath:   payload["file_path"].GetStringValue(),
		Content:    payload["content"].GetStringValue(),
		ChunkCount: int(payload["chunk_count"].GetIntegerValue()),
	}
	if raw := payload["ingested_at"].GetStringValue(); raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			doc.IngestedAt = t
		}
	}
	return doc
}

func pointID(id string) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func intValue(i int64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: i}}
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   key,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
			},
		},
	}
}

func withPayload() *pb.WithPayloadSelector {
	return &pb.WithPayloadSelector{
		SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
	}
}
