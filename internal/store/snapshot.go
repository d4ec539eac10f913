package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const snapshotsTable = "session_snapshots"

// SnapshotRepo persists serialized quiz sessions so a quiz can be resumed
// after the terminal client exits.
type SnapshotRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// Save stores a new snapshot for sessionID.
func (r *SnapshotRepo) Save(ctx context.Context, sessionID string, data json.RawMessage) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := builder().Insert(snapshotsTable).
		Columns("sequence", "created_at", "session_id", "data").
		Values(seqNum, time.Now().UnixMilli(), sessionID, string(data)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot, or nil if none exist.
func (r *SnapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	query, args := builder().Select("id", "sequence", "created_at", "session_id", "data").
		From(entsql.Table(snapshotsTable)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var (
		snap    Snapshot
		created int64
		data    string
	)
	if err := rows.Scan(&snap.ID, &snap.Sequence, &created, &snap.SessionID, &data); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	snap.Timestamp = time.UnixMilli(created)
	snap.Data = json.RawMessage(data)
	return &snap, nil
}

// Prune deletes all but the keep most recent snapshots.
func (r *SnapshotRepo) Prune(ctx context.Context, keep int) error {
	recent := builder().Select("id").
		From(entsql.Table(snapshotsTable)).
		OrderBy(entsql.Desc("sequence")).
		Limit(keep)

	query, args := builder().Delete(snapshotsTable).
		Where(entsql.Not(entsql.In("id", recent))).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// Count returns the number of stored snapshots.
func (r *SnapshotRepo) Count(ctx context.Context) (int, error) {
	query, args := builder().Select(entsql.Count("*")).
		From(entsql.Table(snapshotsTable)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scan count: %w", err)
		}
	}
	return n, rows.Err()
}

// Clear deletes every stored snapshot and reports how many were removed.
func (r *SnapshotRepo) Clear(ctx context.Context) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	query, args := builder().Delete(snapshotsTable).Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return 0, fmt.Errorf("clear snapshots: %w", err)
	}
	return n, nil
}
