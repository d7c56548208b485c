package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/MACM18/NNS-sub002/internal/core/id"
)

// CompressionAlgo specifies the compression algorithm used for an archived
// payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// SyncLogEntry is one archived reconciliation batch.
type SyncLogEntry struct {
	ID                id.ID           `db:"id"`
	SyncID            string          `db:"sync_id"`
	Month             int             `db:"month"`
	Year              int             `db:"year"`
	RowCount          int             `db:"row_count"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// SyncLog archives raw reconciliation batches so a bad month can be
// re-examined against what the source actually sent. Large payloads are
// stored zstd-compressed.
type SyncLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewSyncLog creates a new batch archive.
func NewSyncLog(txManager *TxManager) (*SyncLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &SyncLog{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// Record archives a batch payload. Implements reconcile.BatchLogger.
func (l *SyncLog) Record(ctx context.Context, syncID string, month, year, rowCount int, payload []byte) error {
	entry := SyncLogEntry{
		ID:              id.New(),
		SyncID:          syncID,
		Month:           month,
		Year:            year,
		RowCount:        rowCount,
		Payload:         payload,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}

	if len(payload) > l.compressThreshold {
		entry.PayloadCompressed = l.encoder.EncodeAll(payload, nil)
		entry.Payload = nil
		entry.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO inv_sync_log (
			id, sync_id, month, year, row_count,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := l.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ID, entry.SyncID, entry.Month, entry.Year, entry.RowCount,
		entry.Payload, entry.PayloadCompressed, entry.CompressionAlgo,
		entry.CreatedAt,
	)
	return err
}

// History returns the most recent archived batches for a period, payloads
// decompressed.
func (l *SyncLog) History(ctx context.Context, month, year, limit int) ([]SyncLogEntry, error) {
	sql := `
		SELECT id, sync_id, month, year, row_count,
		       payload, payload_compressed, compression_algo, created_at
		FROM inv_sync_log
		WHERE month = $1 AND year = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := l.txManager.GetQuerier(ctx).Query(ctx, sql, month, year, limit)
	if err != nil {
		return nil, fmt.Errorf("query sync log: %w", err)
	}
	defer rows.Close()

	var entries []SyncLogEntry
	for rows.Next() {
		var e SyncLogEntry
		err := rows.Scan(
			&e.ID, &e.SyncID, &e.Month, &e.Year, &e.RowCount,
			&e.Payload, &e.PayloadCompressed, &e.CompressionAlgo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sync log entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.PayloadCompressed) > 0 {
			decompressed, err := l.decoder.DecodeAll(e.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress payload: %w", err)
			}
			e.Payload = decompressed
			e.PayloadCompressed = nil
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
