package contentstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/asila/asila/internal/domain/entities"
)

// LogQuery records one handled message. Implements ports.QueryLog.
func (s *Store) LogQuery(ctx context.Context, rec entities.QueryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queries (id, phone_number, tenant_id, query_text, query_language, location,
			response_text, response_type, retrieved_chunks, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		rec.Sender,
		nullable(rec.TenantID),
		rec.QueryText,
		rec.QueryLanguage,
		nullable(rec.Location),
		rec.ResponseText,
		string(rec.ResponseType),
		strings.Join(rec.RetrievedChunks, ","),
		rec.Latency.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting query record: %w", err)
	}
	return nil
}

// LogUnanswered records a message the pipeline could not answer with
// verified content, with the reason it fell through.
func (s *Store) LogUnanswered(ctx context.Context, rec entities.QueryRecord, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unanswered_queries (id, phone_number, tenant_id, query_text, query_language, location, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		rec.Sender,
		nullable(rec.TenantID),
		rec.QueryText,
		rec.QueryLanguage,
		nullable(rec.Location),
		reason,
	)
	if err != nil {
		return fmt.Errorf("inserting unanswered record: %w", err)
	}
	return nil
}

// RecentQueries returns the most recent query records, newest first.
// Serves the admin API only; the pipeline never reads the log back.
func (s *Store) RecentQueries(ctx context.Context, limit int) ([]entities.QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT phone_number, COALESCE(tenant_id, ''), query_text, COALESCE(query_language, ''),
			COALESCE(location, ''), COALESCE(response_text, ''), COALESCE(response_type, ''),
			COALESCE(retrieved_chunks, '')
		FROM queries ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []entities.QueryRecord
	for rows.Next() {
		var rec entities.QueryRecord
		var responseType, chunkIDs string
		if err := rows.Scan(&rec.Sender, &rec.TenantID, &rec.QueryText, &rec.QueryLanguage,
			&rec.Location, &rec.ResponseText, &responseType, &chunkIDs); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.ResponseType = entities.ResponseStatus(responseType)
		if chunkIDs != "" {
			rec.RetrievedChunks = strings.Split(chunkIDs, ",")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
