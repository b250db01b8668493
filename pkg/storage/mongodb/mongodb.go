package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

// Store adalah docstore.Store di atas satu database MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

// Connect membuka koneksi ke MongoDB dan memastikan server merespons ping.
func Connect(ctx context.Context, uri, database string, log *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("gagal membuka koneksi ke MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("gagal melakukan ping ke MongoDB: %w", err)
	}
	log.Info("Berhasil terhubung ke MongoDB.", zap.String("database", database))
	return &Store{client: client, db: client.Database(database), log: log}, nil
}

func (s *Store) Find(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	q, err := BuildFilter(filters)
	if err != nil {
		return nil, err
	}
	cur, err := s.db.Collection(collection).Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []docstore.Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		docs = append(docs, ToDocument(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	m := bson.M{}
	for k, v := range doc.Fields {
		m[k] = v
	}
	if doc.ID != "" {
		m["_id"] = doc.ID
	}
	res, err := s.db.Collection(collection).InsertOne(ctx, m)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return idString(res.InsertedID), nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// BuildFilter menerjemahkan filter docstore menjadi dokumen query bson.
// Filter pada field yang sama digabung dalam satu sub-dokumen.
func BuildFilter(filters []docstore.Filter) (bson.M, error) {
	q := bson.M{}
	for _, f := range filters {
		var op string
		switch f.Op {
		case docstore.OpGTE:
			op = "$gte"
		case docstore.OpLTE:
			op = "$lte"
		default:
			return nil, fmt.Errorf("%w: operator %q", docstore.ErrUnsupportedFilter, f.Op)
		}
		cond, _ := q[f.Field].(bson.M)
		if cond == nil {
			cond = bson.M{}
			q[f.Field] = cond
		}
		cond[op] = f.Value
	}
	return q, nil
}

// ToDocument mengubah hasil decode bson menjadi docstore.Document dengan nilai
// Go biasa (time.Time, []any, map[string]any).
func ToDocument(raw bson.M) docstore.Document {
	d := docstore.Document{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			d.ID = idString(v)
			continue
		}
		d.Fields[k] = normalize(v)
	}
	return d
}

func normalize(v any) any {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time()
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0)
	case primitive.ObjectID:
		return x.Hex()
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = normalize(e.Value)
		}
		return out
	}
	return v
}

func idString(v any) string {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case string:
		return x
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
