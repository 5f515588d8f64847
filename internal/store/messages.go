package store

import (
	"context"
	"fmt"

	"github.com/atlasindex/atlas/internal/gwclient"
)

// InsertMessages batch-inserts Message rows for one stream (spec §3, §4.4
// Persist). Must be called, and complete, before InsertTags for the same
// page — callers write messages first so the soft message/tag invariant
// (§3 MessageTag) holds even without foreign-key enforcement.
func (s *Store) InsertMessages(ctx context.Context, streamLabel string, msgs []gwclient.Message, ingestTS uint64) error {
	if len(msgs) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO messages (stream_label, block_height, message_id, owner, recipient, bundled_in, data_size, block_timestamp, ingest_ts)")
	if err != nil {
		return fmt.Errorf("store: prepare messages batch: %w", err)
	}
	for _, m := range msgs {
		if err := batch.Append(
			streamLabel,
			m.BlockHeight,
			m.ID,
			m.Owner,
			m.Recipient,
			m.BundledIn,
			m.DataSize,
			uint64(m.BlockTimestamp),
			ingestTS,
		); err != nil {
			return fmt.Errorf("store: append message: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("store: send messages batch: %w", err)
	}
	return nil
}

// InsertTags batch-inserts MessageTag rows derived from the same page of
// messages (spec §3, §4.4 Persist).
func (s *Store) InsertTags(ctx context.Context, streamLabel string, msgs []gwclient.Message, ingestTS uint64) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO message_tags (stream_label, tag_key, tag_value, block_height, message_id, ingest_ts)")
	if err != nil {
		return fmt.Errorf("store: prepare tags batch: %w", err)
	}
	n := 0
	for _, m := range msgs {
		for _, t := range m.Tags {
			if err := batch.Append(streamLabel, t.Name, t.Value, m.BlockHeight, m.ID, ingestTS); err != nil {
				return fmt.Errorf("store: append tag: %w", err)
			}
			n++
		}
	}
	if n == 0 {
		return nil
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("store: send tags batch: %w", err)
	}
	return nil
}
