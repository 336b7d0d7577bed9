package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// QdrantIndex is the hosted backend. Qdrant point ids must be uuids or
// integers, so canonical record ids are mapped to deterministic uuids
// and the original id is kept in the payload.
type QdrantIndex struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

const (
	payloadRecordID   = "record_id"
	payloadItemName   = "item_name"
	payloadEntityType = "entity_type"
	payloadInfoType   = "info_type"
	payloadSourceText = "source_text"
	payloadMetadata   = "metadata_json"
)

func NewQdrantIndex(addr, collection string) (*QdrantIndex, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant %s: %w", addr, err)
	}
	return &QdrantIndex{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist yet.
func (s *QdrantIndex) EnsureCollection(ctx context.Context, dimension int) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *QdrantIndex) Query(ctx context.Context, embedding []float32, topK int) ([]Record, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is empty")
	}
	if topK <= 0 {
		topK = 5
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	results := make([]Record, 0, len(resp.GetResult()))
	for _, scored := range resp.GetResult() {
		rec, decodeErr := recordFromPayload(scored.GetPayload())
		if decodeErr != nil {
			return nil, decodeErr
		}
		rec.Score = float64(scored.GetScore())
		results = append(results, rec)
	}
	return results, nil
}

func (s *QdrantIndex) Fetch(ctx context.Context, id string) (Record, error) {
	resp, err := s.points.Get(ctx, &pb.GetPoints{
		CollectionName: s.collection,
		Ids:            []*pb.PointId{pointID(id)},
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return Record{}, fmt.Errorf("get point %s: %w", id, err)
	}
	if len(resp.GetResult()) == 0 {
		return Record{}, fmt.Errorf("fetch %s: %w", id, ErrNotFound)
	}

	rec, err := recordFromPayload(resp.GetResult()[0].GetPayload())
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *QdrantIndex) Upsert(ctx context.Context, records []UpsertRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, rec := range records {
		meta := rec.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", rec.ID, err)
		}

		points[i] = &pb.PointStruct{
			Id: pointID(rec.ID),
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: rec.Embedding},
				},
			},
			Payload: map[string]*pb.Value{
				payloadRecordID:   stringValue(rec.ID),
				payloadItemName:   stringValue(rec.ItemName),
				payloadEntityType: stringValue(rec.EntityType),
				payloadInfoType:   stringValue(rec.InfoType),
				payloadSourceText: stringValue(rec.SourceText),
				payloadMetadata:   stringValue(string(metaJSON)),
			},
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Clear drops the collection. EnsureCollection recreates it on the next
// startup.
func (s *QdrantIndex) Clear(ctx context.Context) error {
	_, err := s.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: s.collection,
	})
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *QdrantIndex) Close() error {
	return s.conn.Close()
}

func recordFromPayload(payload map[string]*pb.Value) (Record, error) {
	rec := Record{
		ID:         payload[payloadRecordID].GetStringValue(),
		ItemName:   payload[payloadItemName].GetStringValue(),
		EntityType: payload[payloadEntityType].GetStringValue(),
		InfoType:   payload[payloadInfoType].GetStringValue(),
		SourceText: payload[payloadSourceText].GetStringValue(),
	}

	if raw := payload[payloadMetadata].GetStringValue(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Metadata); err != nil {
			return Record{}, fmt.Errorf("decode metadata for %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// PointUUID derives the deterministic Qdrant point uuid for a canonical
// record id.
func PointUUID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func pointID(id string) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: PointUUID(id)}}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

var _ Index = (*QdrantIndex)(nil)
