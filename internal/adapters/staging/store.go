// Package staging reads and lands raw attendance payloads in the staging
// table. The reconciliation core consumes staged rows as (payload, load_ts)
// pairs; the landing side appends extracted payloads verbatim.
package staging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	"github.com/batisback/loyverse-daily-sync/internal/platform/db"
	"github.com/batisback/loyverse-daily-sync/pkg/metrics"
)

// Store provides access to the staging table.
type Store struct {
	conn  db.DBTX
	table string
}

// NewStore creates a staging store over the given table.
func NewStore(conn db.DBTX, table string) *Store {
	return &Store{conn: conn, table: table}
}

// Events returns every staged event in load order. Rows with a null or
// undecodable payload come back with a nil Payload map; the engine filters
// them out of the batch downstream.
func (s *Store) Events(ctx context.Context) ([]model.RawEvent, error) {
	q := fmt.Sprintf("SELECT payload, load_ts FROM `%s` ORDER BY load_ts, id", s.table)
	rows, err := s.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadStaging, err)
	}
	defer rows.Close()

	var out []model.RawEvent
	for rows.Next() {
		var (
			raw    sql.NullString
			loadTS time.Time
		)
		if err := rows.Scan(&raw, &loadTS); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadStaging, err)
		}

		e := model.RawEvent{LoadTS: loadTS}
		if raw.Valid {
			e.Payload = decodePayload(raw.String)
		}
		out = append(out, e)
		metrics.RecordEventStaged()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadStaging, err)
	}
	return out, nil
}

// Append lands one extraction run's payloads with a shared load timestamp.
func (s *Store) Append(ctx context.Context, runID string, payloads []map[string]string, loadTS time.Time) error {
	q := fmt.Sprintf("INSERT INTO `%s` (run_id, payload, load_ts) VALUES (?, ?, ?)", s.table)
	for _, p := range payloads {
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteStaging, err)
		}
		if _, err := s.conn.ExecContext(ctx, q, runID, string(body), loadTS); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteStaging, err)
		}
	}
	return nil
}

// decodePayload unmarshals a staged JSON payload. Provider exports carry
// string or null values; null and non-string values read as absent keys.
// A payload that is itself the JSON null literal reads as a missing payload.
func decodePayload(raw string) map[string]string {
	var loose map[string]any
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil
	}
	if loose == nil {
		return nil
	}
	payload := make(map[string]string, len(loose))
	for k, v := range loose {
		if s, ok := v.(string); ok {
			payload[k] = s
		}
	}
	return payload
}
