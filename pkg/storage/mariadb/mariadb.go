package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/config"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

var (
	db      *sql.DB
	once    sync.Once
	connErr error

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Kolom terindeks untuk field dokumen yang bisa difilter di sisi server.
var indexedColumns = map[string]string{
	"createdAt": "created_at",
}

const schema = `CREATE TABLE IF NOT EXISTS documents (
	collection VARCHAR(64)  NOT NULL,
	id         VARCHAR(64)  NOT NULL,
	created_at DATETIME(3)  NULL,
	body       JSON         NOT NULL,
	PRIMARY KEY (collection, id),
	KEY idx_documents_created_at (collection, created_at)
)`

// Connect membuka koneksi ke database MariaDB.
// Semua kredensial diambil dari file .env melalui config.go.
func Connect(log *zap.Logger) (*sql.DB, error) {
	once.Do(func() {
		cfg := config.LoadConfig()
		// Format DSN: username:password@tcp(host:port)/dbname?parseTime=true&loc=Asia%2FJakarta
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, url.QueryEscape(cfg.Timezone))

		var err error
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			connErr = fmt.Errorf("gagal membuka koneksi ke database: %w", err)
			return
		}
		if err = db.Ping(); err != nil {
			connErr = fmt.Errorf("gagal melakukan ping ke database: %w", err)
			return
		}
		log.Info("Berhasil terhubung ke MariaDB.")
	})
	return db, connErr
}

// Store adalah docstore.Store di atas tabel documents.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// EnsureSchema membuat tabel documents bila belum ada.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	body, err := json.Marshal(doc.Fields)
	if err != nil {
		return "", fmt.Errorf("encode %s/%s: %w", collection, doc.ID, err)
	}
	var createdAt sql.NullTime
	if t, ok := doc.Fields["createdAt"].(time.Time); ok {
		createdAt = sql.NullTime{Time: t, Valid: true}
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO documents (collection, id, created_at, body) VALUES (?, ?, ?, ?)",
		collection, doc.ID, createdAt, string(body))
	if err != nil {
		return "", fmt.Errorf("insert %s/%s: %w", collection, doc.ID, err)
	}
	return doc.ID, nil
}

func (s *Store) Find(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	q, args, err := BuildQuery(collection, filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			id        string
			createdAt sql.NullTime
			body      []byte
		)
		if err := rows.Scan(&id, &createdAt, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		d, err := decodeRow(id, createdAt, body)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) Close(context.Context) error {
	return s.DB.Close()
}

// BuildQuery menyusun SELECT untuk satu koleksi dengan filter yang ada.
func BuildQuery(collection string, filters []docstore.Filter) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, created_at, body FROM documents WHERE collection = ?")
	args := []any{collection}
	for _, f := range filters {
		col, ok := indexedColumns[f.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: field %q is not indexed", docstore.ErrUnsupportedFilter, f.Field)
		}
		switch f.Op {
		case docstore.OpGTE, docstore.OpLTE:
			fmt.Fprintf(&sb, " AND %s %s ?", col, f.Op)
		default:
			return "", nil, fmt.Errorf("%w: operator %q", docstore.ErrUnsupportedFilter, f.Op)
		}
		args = append(args, f.Value)
	}
	return sb.String(), args, nil
}

// decodeRow memulihkan createdAt sebagai time.Time dari kolom terindeks; field
// waktu lain tetap berupa string hasil JSON.
func decodeRow(id string, createdAt sql.NullTime, body []byte) (docstore.Document, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return docstore.Document{}, err
	}
	if createdAt.Valid {
		fields["createdAt"] = createdAt.Time
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}
