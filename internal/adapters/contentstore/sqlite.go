// Package contentstore persists verified notice content and serves scoped
// similarity retrieval over it.
// Clean Architecture: Adapter implementing ports.Retriever (and the query
// log sink, see querylog.go) on SQLite.
package contentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/asila/asila/internal/domain/entities"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store is the SQLite-backed content store. The pipeline only ever reads
// from it; the Put* methods exist for the ingestion tooling and tests.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Tenant is an organization owning notices. Inactive tenants are excluded
// from retrieval entirely.
type Tenant struct {
	ID     string
	Name   string
	Active bool
}

// Notice is one verified publication. Only notices with status "approved"
// and an unexpired validity window are retrievable.
type Notice struct {
	ID          string
	TenantID    string
	Title       string
	Status      string
	Location    string
	ValidityEnd *time.Time
}

// Chunk is one embedded span of notice text, the unit of retrieval.
type Chunk struct {
	ID        string
	NoticeID  string
	TenantID  string
	Text      string
	Index     int
	Location  string
	Embedding []float32
}

// NoticeStatusApproved is the only publish status retrieval accepts.
const NoticeStatusApproved = "approved"

// NewStore opens (or creates) the content database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS notices (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id),
		title TEXT NOT NULL,
		publish_status TEXT NOT NULL DEFAULT 'draft',
		location TEXT,
		validity_end INTEGER
	);
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		notice_id TEXT NOT NULL REFERENCES notices(id),
		tenant_id TEXT NOT NULL,
		chunk_text TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		location TEXT,
		embedding BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_tenant ON chunks(tenant_id);
	CREATE TABLE IF NOT EXISTS queries (
		id TEXT PRIMARY KEY,
		phone_number TEXT NOT NULL,
		tenant_id TEXT,
		query_text TEXT NOT NULL,
		query_language TEXT,
		location TEXT,
		response_text TEXT,
		response_type TEXT,
		retrieved_chunks TEXT,
		latency_ms INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS unanswered_queries (
		id TEXT PRIMARY KEY,
		phone_number TEXT NOT NULL,
		tenant_id TEXT,
		query_text TEXT NOT NULL,
		query_language TEXT,
		location TEXT,
		reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// PutTenant inserts or replaces a tenant.
func (s *Store) PutTenant(ctx context.Context, t Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tenants (id, name, is_active) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.Active,
	)
	return err
}

// PutNotice inserts or replaces a notice.
func (s *Store) PutNotice(ctx context.Context, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO notices (id, tenant_id, title, publish_status, location, validity_end)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.TenantID, n.Title, n.Status, nullable(n.Location), nullableUnix(n.ValidityEnd),
	)
	return err
}

// PutChunks stores chunks with their embeddings in one transaction.
func (s *Store) PutChunks(ctx context.Context, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, notice_id, tenant_id, chunk_text, chunk_index, location, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		embeddingJSON, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.NoticeID, c.TenantID, c.Text, c.Index, nullable(c.Location), embeddingJSON); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}
	return tx.Commit()
}

// Retrieve returns up to limit chunks for tenantID ranked by ascending
// cosine distance to queryEmbedding. Scoping: approved notice, validity
// window not ended, active tenant, and exact location match when location
// is non-empty. An empty result is not an error.
func (s *Store) Retrieve(ctx context.Context, tenantID string, queryEmbedding []float32, location string, limit int) ([]entities.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.chunk_text, c.embedding, n.title, COALESCE(c.location, ''), t.name
		FROM chunks c
		JOIN notices n ON c.notice_id = n.id
		JOIN tenants t ON c.tenant_id = t.id
		WHERE n.publish_status = ?
		  AND (n.validity_end IS NULL OR n.validity_end > ?)
		  AND c.tenant_id = ?
		  AND (? = '' OR c.location = ?)
		  AND t.is_active = 1
	`, NoticeStatusApproved, time.Now().Unix(), tenantID, location, location)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []entities.RetrievedChunk
	for rows.Next() {
		var chunk entities.RetrievedChunk
		var embeddingJSON []byte
		if err := rows.Scan(&chunk.ID, &chunk.Text, &embeddingJSON, &chunk.Title, &chunk.Location, &chunk.TenantName); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		var embedding []float32
		if err := json.Unmarshal(embeddingJSON, &embedding); err != nil {
			continue // skip corrupted embeddings
		}

		chunk.Distance = cosineDistance(queryEmbedding, embedding)
		results = append(results, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	// Nearest first; ties keep scan order, which is stable but not
	// semantically significant.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// cosineDistance is 1 - cosine similarity: 0 for identical direction,
// growing toward 2 for opposite vectors. Degenerate inputs rank last.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableUnix stores validity as an epoch second so range comparisons in
// SQL never depend on a text time format.
func nullableUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
