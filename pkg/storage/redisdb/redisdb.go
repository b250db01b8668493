package redisdb

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

// Store menyimpan dokumen sebagai msgpack di key <coll>:doc:<id>, daftar id di
// set <coll>:ids, dan indeks waktu di ZSET <coll>:idx:<field> (skor unix milli).
type Store struct {
	db      *redis.Client
	log     *zap.Logger
	indexed []string
}

// Connect membuat client Redis dan memastikan server merespons ping.
func Connect(ctx context.Context, addr string, log *zap.Logger) (*Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("alamat Redis belum dikonfigurasi")
	}
	c := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     32,
		MinIdleConns: 4,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("gagal terhubung ke Redis di %s: %w", addr, err)
	}
	log.Info("Berhasil terhubung ke Redis.", zap.String("addr", addr))
	return New(c, log, "createdAt"), nil
}

// New membungkus client yang sudah ada. indexed adalah field waktu yang
// mendukung filter rentang.
func New(c *redis.Client, log *zap.Logger, indexed ...string) *Store {
	return &Store{db: c, log: log, indexed: indexed}
}

func docKey(coll, id string) string    { return coll + ":doc:" + id }
func idsKey(coll string) string        { return coll + ":ids" }
func idxKey(coll, field string) string { return coll + ":idx:" + field }

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	b, err := msgpack.Marshal(doc.Fields)
	if err != nil {
		return "", fmt.Errorf("marshal %s/%s: %w", collection, doc.ID, err)
	}

	_, err = s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, docKey(collection, doc.ID), b, 0)
		p.SAdd(ctx, idsKey(collection), doc.ID)
		for _, field := range s.indexed {
			if t, ok := doc.Fields[field].(time.Time); ok {
				p.ZAdd(ctx, idxKey(collection, field), redis.Z{Score: float64(t.UnixMilli()), Member: doc.ID})
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("[Redis:Insert] failed to save document", zap.String("collection", collection), zap.String("id", doc.ID), zap.Error(err))
		return "", fmt.Errorf("insert %s/%s: %w", collection, doc.ID, err)
	}
	return doc.ID, nil
}

func (s *Store) Find(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	var ids []string
	var err error
	if len(filters) == 0 {
		ids, err = s.db.SMembers(ctx, idsKey(collection)).Result()
	} else {
		var r docstore.Range
		if r, err = docstore.RangeOf(filters); err != nil {
			return nil, err
		}
		if !slices.Contains(s.indexed, r.Field) {
			return nil, fmt.Errorf("%w: field %q is not indexed", docstore.ErrUnsupportedFilter, r.Field)
		}
		ids, err = s.db.ZRangeByScore(ctx, idxKey(collection, r.Field), ScoreRange(r)).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(collection, id)
	}
	vals, err := s.db.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", collection, err)
	}

	docs := make([]docstore.Document, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// indeks menunjuk dokumen yang sudah terhapus
			continue
		}
		d, err := Decode(ids[i], []byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, ids[i], err)
		}
		// skor dibulatkan ke milidetik, jadi filter diterapkan ulang secara presisi
		if docstore.MatchAll(d, filters) {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// ScoreRange mengubah rentang waktu menjadi argumen ZRANGEBYSCORE.
func ScoreRange(r docstore.Range) *redis.ZRangeBy {
	zr := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if r.Min != nil {
		zr.Min = strconv.FormatInt(r.Min.UnixMilli(), 10)
	}
	if r.Max != nil {
		zr.Max = strconv.FormatInt(r.Max.UnixMilli(), 10)
	}
	return zr
}

// Decode membaca dokumen msgpack.
func Decode(id string, b []byte) (docstore.Document, error) {
	fields := map[string]any{}
	if err := msgpack.Unmarshal(b, &fields); err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}
