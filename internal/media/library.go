package media

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"avtopology/internal/models"
	"avtopology/internal/store"
)

//go:embed fixture/library.json
var defaultFixture []byte

// Library supplies the tracks a media server browses, in native order.
type Library interface {
	Load(ctx context.Context, tm *TagManager) ([]*Metadata, error)
	Close() error
}

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSqlite Backend = "sqlite"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendMemory, BackendSqlite:
		return true
	}
	return false
}

type LibraryConfig struct {
	Backend Backend
	// Fixture is a JSON track list. Empty selects the built-in library.
	Fixture string
	// DBPath is the sqlite database, seeded from the fixture when empty.
	DBPath string
}

func NewLibrary(ctx context.Context, cfg LibraryConfig) (Library, error) {
	tracks, err := readFixture(cfg.Fixture)
	if err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendMemory, "":
		return &MemoryLibrary{tracks: tracks}, nil
	case BackendSqlite:
		return openSqlite(ctx, cfg.DBPath, tracks)
	default:
		return nil, fmt.Errorf("library backend %q: %w", cfg.Backend, models.ErrNotSupported)
	}
}

func readFixture(path string) ([]models.Track, error) {
	if path == "" {
		var tracks []models.Track
		if err := json.Unmarshal(defaultFixture, &tracks); err != nil {
			return nil, fmt.Errorf("decoding built-in library: %w", err)
		}
		return tracks, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening library fixture: %w", err)
	}
	defer f.Close()
	tracks, err := ReadTracks(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tracks, nil
}

// ReadTracks decodes a JSON array of tracks.
func ReadTracks(r io.Reader) ([]models.Track, error) {
	var tracks []models.Track
	if err := json.NewDecoder(r).Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decoding tracks: %w", err)
	}
	return tracks, nil
}

// MemoryLibrary serves a fixed track list.
type MemoryLibrary struct {
	tracks []models.Track
}

func NewMemoryLibrary(tracks []models.Track) *MemoryLibrary {
	return &MemoryLibrary{tracks: tracks}
}

func (l *MemoryLibrary) Load(_ context.Context, tm *TagManager) ([]*Metadata, error) {
	return convert(tm, l.tracks), nil
}

func (l *MemoryLibrary) Close() error { return nil }

type sqliteLibrary struct {
	store *store.Store
}

func openSqlite(ctx context.Context, path string, seed []models.Track) (*sqliteLibrary, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite library: no database path")
	}
	s, err := store.New(path)
	if err != nil {
		return nil, err
	}
	n, err := s.TrackCount(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	if n == 0 {
		written, err := s.ReplaceTracks(ctx, seed)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("seeding %s: %w", path, err)
		}
		log.Info().Str("module", "store").Str("path", path).Int("tracks", written).Msg("seeded library")
	}
	return &sqliteLibrary{store: s}, nil
}

func (l *sqliteLibrary) Load(ctx context.Context, tm *TagManager) ([]*Metadata, error) {
	tracks, err := l.store.Tracks(ctx)
	if err != nil {
		return nil, err
	}
	return convert(tm, tracks), nil
}

func (l *sqliteLibrary) Close() error {
	return l.store.Close()
}

func convert(tm *TagManager, tracks []models.Track) []*Metadata {
	out := make([]*Metadata, 0, len(tracks))
	for i, t := range tracks {
		m, unknown := FromTrack(tm, t)
		if len(unknown) > 0 {
			log.Warn().Str("module", "media").Int("track", i).Strs("tags", unknown).Msg("skipping unknown tags")
		}
		out = append(out, m)
	}
	return out
}
