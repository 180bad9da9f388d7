package store

import (
	"context"
	"fmt"

	"avtopology/internal/models"
)

// ReplaceTracks swaps the whole library for tracks, keeping their order.
func (s *Store) ReplaceTracks(ctx context.Context, tracks []models.Track) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks`); err != nil {
		return 0, fmt.Errorf("clear tracks: %w", err)
	}

	trackStmt, err := tx.PrepareContext(ctx, `INSERT INTO tracks (position) VALUES (?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer trackStmt.Close()

	tagStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO track_tags (track_id, position, tag, value_index, value)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer tagStmt.Close()

	count := 0
	for i, t := range tracks {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		res, err := trackStmt.ExecContext(ctx, i)
		if err != nil {
			return count, fmt.Errorf("insert track %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return count, err
		}
		for pos, md := range t.Metadata {
			for vi, v := range md.Values {
				if _, err := tagStmt.ExecContext(ctx, id, pos, md.Tag, vi, v); err != nil {
					return count, fmt.Errorf("insert track %d tag %s: %w", i, md.Tag, err)
				}
			}
		}
		count++
	}

	return count, tx.Commit()
}

// Tracks returns every track in library order.
func (s *Store) Tracks(ctx context.Context) ([]models.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, tt.position, tt.tag, tt.value
		FROM tracks t
		LEFT JOIN track_tags tt ON tt.track_id = t.id
		ORDER BY t.position, tt.position, tt.value_index`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	lastPos := -1
	for rows.Next() {
		var (
			id    int64
			pos   *int
			tag   *string
			value *string
		)
		if err := rows.Scan(&id, &pos, &tag, &value); err != nil {
			return nil, err
		}
		if n := len(tracks); n == 0 || tracks[n-1].ID != id {
			tracks = append(tracks, models.Track{ID: id})
			lastPos = -1
		}
		if pos == nil {
			continue
		}
		t := &tracks[len(tracks)-1]
		if *pos != lastPos {
			t.Metadata = append(t.Metadata, models.Metadatum{Tag: *tag})
			lastPos = *pos
		}
		md := &t.Metadata[len(t.Metadata)-1]
		md.Values = append(md.Values, *value)
	}
	return tracks, rows.Err()
}

func (s *Store) TrackCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return n, nil
}
