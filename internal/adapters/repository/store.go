// Package repository merges normalized records into the canonical
// attendance table.
//
// The merge is a set operation keyed on attn_id: existing rows have every
// non-key column overwritten, new ids are inserted, rows absent from the
// batch are left untouched. The whole batch runs inside one transaction so
// a storage failure partway never leaves a partially-applied batch.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	"github.com/batisback/loyverse-daily-sync/internal/platform/db"
	"github.com/batisback/loyverse-daily-sync/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultChunkSize = 500
)

// Non-key columns, in statement order after attn_id.
var valueColumns = []string{ //nolint:gochecknoglobals // fixed column order
	"date",
	"full_name",
	"`group`",
	"entry_type",
	"time_ts",
	"duration_sec",
	"activity",
	"kiosk_name",
	"updated_at",
}

// Result summarizes one merge transaction. RowsAffected follows MySQL
// semantics: 1 per inserted row, 2 per updated row, 0 for a no-op rewrite.
type Result struct {
	Records      int
	RowsAffected int64
}

// Store performs canonical table merges.
type Store struct {
	conn      *sql.DB
	table     string
	chunkSize int
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithChunkSize caps rows per upsert statement inside the transaction.
func WithChunkSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewStore creates a canonical table store.
func NewStore(conn *sql.DB, table string, opts ...Option) *Store {
	s := &Store{
		conn:      conn,
		table:     table,
		chunkSize: defaultChunkSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Merge upserts the batch in a single transaction. An empty batch commits
// trivially. On any statement error the transaction rolls back and the
// canonical table is untouched.
func (s *Store) Merge(ctx context.Context, records []model.Record) (Result, error) {
	metrics.UpdateMergeBatchSize(len(records))
	if len(records) == 0 {
		return Result{}, nil
	}

	start := time.Now()
	res := Result{Records: len(records)}

	err := db.RunInTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		for begin := 0; begin < len(records); begin += s.chunkSize {
			end := begin + s.chunkSize
			if end > len(records) {
				end = len(records)
			}
			chunk := records[begin:end]

			r, err := tx.ExecContext(ctx, s.upsertQuery(len(chunk)), upsertArgs(chunk)...)
			if err != nil {
				return err
			}
			affected, _ := r.RowsAffected()
			res.RowsAffected += affected
		}
		return nil
	})
	if err != nil {
		metrics.RecordMergeFailure()
		return Result{}, fmt.Errorf("%w: %w", ErrMergeFailed, err)
	}

	metrics.RecordMergeDuration(float64(time.Since(start).Milliseconds()))
	metrics.RecordMergeRowsWritten(res.RowsAffected)
	return res, nil
}

// upsertQuery builds the n-row INSERT ... ON DUPLICATE KEY UPDATE statement.
func (s *Store) upsertQuery(n int) string {
	var buf strings.Builder

	buf.WriteString("INSERT INTO `")
	buf.WriteString(s.table)
	buf.WriteString("` (attn_id, ")
	buf.WriteString(strings.Join(valueColumns, ", "))
	buf.WriteString(") VALUES ")

	row := "(?" + strings.Repeat(", ?", len(valueColumns)) + ")"
	buf.WriteString(row)
	for i := 1; i < n; i++ {
		buf.WriteString(", ")
		buf.WriteString(row)
	}

	buf.WriteString(" ON DUPLICATE KEY UPDATE ")
	for i, col := range valueColumns {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(col)
		buf.WriteString(" = VALUES(")
		buf.WriteString(col)
		buf.WriteString(")")
	}

	return buf.String()
}

// upsertArgs flattens records into statement arguments matching upsertQuery.
func upsertArgs(records []model.Record) []any {
	args := make([]any, 0, len(records)*(len(valueColumns)+1))
	for i := range records {
		rec := &records[i]
		args = append(args,
			rec.ID,
			rec.Date,
			rec.FullName,
			rec.Group,
			rec.EntryType,
			rec.TimeTS,
			rec.DurationSec,
			rec.Activity,
			rec.KioskName,
			rec.UpdatedAt,
		)
	}
	return args
}
