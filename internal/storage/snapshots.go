package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finledger/internal/core"
)

// InsertSnapshot records one write-once asset snapshot.
func (r *SQLiteRepository) InsertSnapshot(ctx context.Context, s core.AssetSnapshot) (core.AssetSnapshot, error) {
	var summary any
	if len(s.AccountsSummary) > 0 {
		summary = string(s.AccountsSummary)
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO asset_snapshots (user_id, total_assets_cents, net_worth_cents, accounts_summary, snapshot_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, user_id, total_assets_cents, net_worth_cents, accounts_summary, snapshot_date, created_at`,
		s.UserID, core.Cents(s.TotalAssets), core.Cents(s.NetWorth), summary, s.SnapshotDate.String())

	created, err := scanSnapshot(row)
	if err != nil {
		return core.AssetSnapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	return created, nil
}

// ListRecentSnapshots returns up to limit snapshots, most recent first.
func (r *SQLiteRepository) ListRecentSnapshots(ctx context.Context, userID int64, limit int) ([]core.AssetSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, total_assets_cents, net_worth_cents, accounts_summary, snapshot_date, created_at
		FROM asset_snapshots
		WHERE user_id = ?
		ORDER BY snapshot_date DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []core.AssetSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSnapshot(row rowScanner) (core.AssetSnapshot, error) {
	var (
		s           core.AssetSnapshot
		totalCents  int64
		worthCents  int64
		summary     sql.NullString
		snapshotDay string
	)
	err := row.Scan(&s.ID, &s.UserID, &totalCents, &worthCents, &summary, &snapshotDay, &s.CreatedAt)
	if err != nil {
		return core.AssetSnapshot{}, err
	}
	s.TotalAssets = core.FromCents(totalCents)
	s.NetWorth = core.FromCents(worthCents)
	if summary.Valid {
		s.AccountsSummary = []byte(summary.String)
	}
	s.SnapshotDate, err = core.ParseDate(snapshotDay)
	if err != nil {
		return core.AssetSnapshot{}, fmt.Errorf("parse snapshot date %q: %w", snapshotDay, err)
	}
	return s, nil
}
