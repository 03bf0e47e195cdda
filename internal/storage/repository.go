package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guttosm/dappulse/internal/domain/models"
	pq "github.com/lib/pq"
)

// SnapshotRepository defines contract for archive DB operations.
type SnapshotRepository interface {
	InsertSnapshot(ctx context.Context, snapshotID string, capturedAt time.Time, records []models.MarketRecord) error
	GetPriceHistory(ctx context.Context, instrument string, since *time.Time, limit int) ([]models.PricePoint, error)
	LatestSnapshotID(ctx context.Context) (string, error)
	DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// InsertSnapshot writes every record of one refresh pass in a single transaction.
func (r *snapshotRepository) InsertSnapshot(ctx context.Context, snapshotID string, capturedAt time.Time, records []models.MarketRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Snapshots are replayable from the sheet; durability can be relaxed.
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"market_snapshots",
		"snapshot_id",
		"captured_at",
		"instrument",
		"kind",
		"price",
		"tick_value",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			snapshotID,
			capturedAt,
			rec.Instrument,
			string(rec.Kind),
			rec.Price,
			rec.TickValue,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetPriceHistory returns archived observations of an instrument, newest first.
func (r *snapshotRepository) GetPriceHistory(ctx context.Context, instrument string, since *time.Time, limit int) ([]models.PricePoint, error) {
	conditions := "instrument = $1"
	args := []interface{}{instrument}
	if since != nil {
		conditions += fmt.Sprintf(" AND captured_at >= $%d", len(args)+1)
		args = append(args, *since)
	}
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT snapshot_id, captured_at, instrument, kind, price, tick_value
		FROM market_snapshots
		WHERE %s
		ORDER BY captured_at DESC
		LIMIT $%d
	`, conditions, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		var kind string
		if err := rows.Scan(&p.SnapshotID, &p.CapturedAt, &p.Instrument, &kind, &p.Price, &p.TickValue); err != nil {
			return nil, err
		}
		p.Kind = models.Kind(kind)
		out = append(out, p)
	}
	return out, rows.Err()
}

// LatestSnapshotID returns the most recent snapshot id, or "" when the archive is empty.
func (r *snapshotRepository) LatestSnapshotID(ctx context.Context) (string, error) {
	var id sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT MAX(snapshot_id) FROM market_snapshots`).Scan(&id)
	if err != nil {
		return "", err
	}
	return id.String, nil
}

// DeleteSnapshotsBefore removes archived rows captured before cutoff.
func (r *snapshotRepository) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM market_snapshots WHERE captured_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
