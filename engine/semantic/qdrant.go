package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/chocoworld/chocochat/engine/domain"
)

const (
	payloadText = "text"
	payloadKind = "kind"

	scrollPage = 256
)

// pointNamespace derives stable point IDs from unit content, so re-indexing
// the same corpus upserts in place instead of accumulating duplicates.
var pointNamespace = uuid.MustParse("8e7a4f7e-1b7d-4b6e-9f2a-3c5d1e0a9b42")

// Qdrant backs the index with a Qdrant collection over gRPC. It implements
// the same contract as FlatIndex for corpora that outgrow a single snapshot.
type Qdrant struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewQdrant connects to Qdrant at the given gRPC address.
func NewQdrant(addr, collection string) (*Qdrant, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &Qdrant{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (q *Qdrant) Close() error { return q.conn.Close() }

// EnsureCollection creates the collection if it doesn't exist.
func (q *Qdrant) EnsureCollection(ctx context.Context, dims int) error {
	list, err := q.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == q.collection {
			return nil
		}
	}

	_, err = q.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: q.collection,
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
		return fmt.Errorf("semantic: create collection %s: %w", q.collection, err)
	}
	return nil
}

// DeleteCollection drops the collection. A rebuild deletes and recreates
// rather than reconciling point by point.
func (q *Qdrant) DeleteCollection(ctx context.Context) error {
	_, err := q.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: q.collection})
	if err != nil {
		return fmt.Errorf("semantic: delete collection %s: %w", q.collection, err)
	}
	return nil
}

// Add upserts units with their embeddings. The unit text and kind plus every
// attr land in the payload so results come back whole.
func (q *Qdrant) Add(ctx context.Context, units []domain.Unit, vectors [][]float32) error {
	if len(units) != len(vectors) {
		return fmt.Errorf("semantic: %d units but %d vectors", len(units), len(vectors))
	}
	if len(units) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(units))
	for i, u := range units {
		payload := make(map[string]*pb.Value, len(u.Attrs)+2)
		payload[payloadText] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: u.Text}}
		payload[payloadKind] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: string(u.Kind)}}
		for k, val := range u.Attrs {
			payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: val}}
		}

		id := uuid.NewSHA1(pointNamespace, []byte(string(u.Kind)+"\x00"+u.Text)).String()
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: id},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vectors[i]},
				},
			},
			Payload: payload,
		}
	}

	wait := true
	_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search performs k-NN similarity search. Qdrant reports cosine similarity;
// the contract wants cosine distance, so scores are flipped on the way out.
func (q *Qdrant) Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	resp, err := q.points.Search(ctx, &pb.SearchPoints{
		CollectionName: q.collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		results[i] = SearchResult{
			Unit:     unitFromPayload(r.GetPayload()),
			Distance: 1 - r.GetScore(),
		}
	}
	return results, nil
}

// ListByKind scrolls the whole collection filtered on kind, page by page.
func (q *Qdrant) ListByKind(ctx context.Context, kind domain.Kind) ([]domain.Unit, error) {
	limit := uint32(scrollPage)
	req := &pb.ScrollPoints{
		CollectionName: q.collection,
		Limit:          &limit,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		Filter: &pb.Filter{
			Must: []*pb.Condition{fieldMatch(payloadKind, string(kind))},
		},
	}

	var out []domain.Unit
	for {
		resp, err := q.points.Scroll(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("semantic: scroll %s: %w", kind, err)
		}
		for _, p := range resp.GetResult() {
			out = append(out, unitFromPayload(p.GetPayload()))
		}
		next := resp.GetNextPageOffset()
		if next == nil {
			return out, nil
		}
		req.Offset = next
	}
}

// Count reports the number of points in the collection.
func (q *Qdrant) Count(ctx context.Context) (int, error) {
	resp, err := q.points.Count(ctx, &pb.CountPoints{CollectionName: q.collection})
	if err != nil {
		return 0, fmt.Errorf("semantic: count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func unitFromPayload(payload map[string]*pb.Value) domain.Unit {
	u := domain.Unit{Attrs: make(map[string]string)}
	for k, val := range payload {
		s := val.GetStringValue()
		switch k {
		case payloadText:
			u.Text = s
		case payloadKind:
			u.Kind = domain.Kind(s)
		default:
			u.Attrs[k] = s
		}
	}
	return u
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}
