package store

import (
	"context"
	"reflect"
	"testing"

	"avtopology/internal/models"
)

func sampleTracks() []models.Track {
	return []models.Track{
		{Metadata: []models.Metadatum{
			{Tag: "audio.title", Values: []string{"So What"}},
			{Tag: "audio.artist", Values: []string{"Miles Davis"}},
		}},
		{Metadata: []models.Metadatum{
			{Tag: "audio.title", Values: []string{"Concierto de Aranjuez"}},
			{Tag: "audio.artist", Values: []string{"Miles Davis", "Gil Evans"}},
		}},
		{},
	}
}

func TestReplaceTracksRoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	n, err := s.ReplaceTracks(ctx, sampleTracks())
	if err != nil {
		t.Fatalf("ReplaceTracks: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 tracks written, got %d", n)
	}

	got, err := s.Tracks(ctx)
	if err != nil {
		t.Fatalf("Tracks: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(got))
	}
	for i, want := range sampleTracks() {
		if !reflect.DeepEqual(want.Metadata, got[i].Metadata) {
			t.Errorf("track %d: got %+v, want %+v", i, got[i].Metadata, want.Metadata)
		}
		if got[i].ID == 0 {
			t.Errorf("track %d: expected an id", i)
		}
	}
}

func TestReplaceTracksReplaces(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	if _, err := s.ReplaceTracks(ctx, sampleTracks()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReplaceTracks(ctx, sampleTracks()[:1]); err != nil {
		t.Fatal(err)
	}

	count, err := s.TrackCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 track after replace, got %d", count)
	}

	var tags int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM track_tags").Scan(&tags); err != nil {
		t.Fatal(err)
	}
	if tags != 2 {
		t.Fatalf("expected orphaned tags to cascade away, got %d rows", tags)
	}
}

func TestReplaceTracksCancelled(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ReplaceTracks(ctx, sampleTracks()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
