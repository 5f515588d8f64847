package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoCursor is returned by LoadCursor when a stream has never committed
// a cursor row.
var ErrNoCursor = errors.New("store: no cursor for stream")

// CursorState is the per-stream resume position (spec §3, §4.3/§4.4).
type CursorState struct {
	StreamLabel        string
	LastCompleteHeight uint64
	LastCursor         string
	UpdatedAt          uint64
}

// LoadCursor returns the latest CursorState for streamLabel, or
// ErrNoCursor if the stream has never been advanced.
func (s *Store) LoadCursor(ctx context.Context, streamLabel string) (CursorState, error) {
	row := s.conn.QueryRow(ctx,
		"SELECT stream_label, last_complete_height, last_cursor, updated_at FROM cursor_state WHERE stream_label = ? ORDER BY updated_at DESC LIMIT 1",
		streamLabel,
	)
	var cs CursorState
	if err := row.Scan(&cs.StreamLabel, &cs.LastCompleteHeight, &cs.LastCursor, &cs.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CursorState{}, ErrNoCursor
		}
		return CursorState{}, fmt.Errorf("store: load cursor for %s: %w", streamLabel, err)
	}
	return cs, nil
}

// StoreCursor idempotently replaces the CursorState row for a stream.
func (s *Store) StoreCursor(ctx context.Context, cs CursorState) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO cursor_state (stream_label, last_complete_height, last_cursor, updated_at)")
	if err != nil {
		return fmt.Errorf("store: prepare cursor batch: %w", err)
	}
	if err := batch.Append(cs.StreamLabel, cs.LastCompleteHeight, cs.LastCursor, cs.UpdatedAt); err != nil {
		return fmt.Errorf("store: append cursor: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("store: send cursor batch: %w", err)
	}
	return nil
}

// MaxIndexedHeight returns the highest block_height actually written for
// a stream, used by the clamp-on-restart recovery path (spec §4.4 Resume)
// when the persisted cursor's height exceeds the gateway's reported tip.
func (s *Store) MaxIndexedHeight(ctx context.Context, streamLabel string) (uint64, error) {
	row := s.conn.QueryRow(ctx,
		"SELECT max(block_height) FROM messages WHERE stream_label = ?",
		streamLabel,
	)
	var height uint64
	if err := row.Scan(&height); err != nil {
		return 0, fmt.Errorf("store: max indexed height for %s: %w", streamLabel, err)
	}
	return height, nil
}
