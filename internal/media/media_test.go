package media

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtopology/internal/models"
)

func TestTagLookup(t *testing.T) {
	tm := NewTagManager()

	tag, ok := tm.Lookup("audio.artist")
	require.True(t, ok)
	assert.Same(t, tm.Audio.Artist, tag)

	tag, ok = tm.Lookup("Container.Title")
	require.True(t, ok)
	assert.Same(t, tm.Container.Title, tag)

	tag, ok = tm.Lookup("genre")
	require.True(t, ok)
	assert.Same(t, tm.Audio.Genre, tag)

	_, ok = tm.Lookup("video.codec")
	assert.False(t, ok)
	_, ok = tm.Lookup("audio.bitrate")
	assert.False(t, ok)

	assert.Len(t, tm.Audio.All(), 12)
	assert.NotSame(t, tm.Audio.Title, tm.Container.Title)
}

func TestMetadataAddPromotes(t *testing.T) {
	tm := NewTagManager()
	m := NewMetadata()
	m.Add(tm.Audio.Artist, "Miles Davis")
	m.Add(tm.Audio.Artist, "Gil Evans")
	m.Add(tm.Audio.Title, "Concierto de Aranjuez")

	v, ok := m.Get(tm.Audio.Artist)
	require.True(t, ok)
	assert.Equal(t, "Miles Davis", v.Primary())
	assert.Equal(t, []string{"Miles Davis", "Gil Evans"}, v.Values())
	assert.Equal(t, []*Tag{tm.Audio.Artist, tm.Audio.Title}, m.Tags())

	_, ok = m.Get(tm.Audio.Genre)
	assert.False(t, ok)
	assert.Equal(t, "", m.Primary(tm.Audio.Genre))
}

func TestTrackConversion(t *testing.T) {
	tm := NewTagManager()
	m, unknown := FromTrack(tm, models.Track{Metadata: []models.Metadatum{
		{Tag: "audio.title", Values: []string{"Sinnerman"}},
		{Tag: "artist", Values: []string{"Nina Simone"}},
		{Tag: "video.codec", Values: []string{"h264"}},
	}})
	assert.Equal(t, []string{"video.codec"}, unknown)
	assert.Equal(t, "Nina Simone", m.Primary(tm.Audio.Artist))

	back := ToTrack(m)
	assert.Equal(t, []models.Metadatum{
		{Tag: "audio.artist", Values: []string{"Nina Simone"}},
		{Tag: "audio.title", Values: []string{"Sinnerman"}},
	}, back.Metadata)
}

func TestDatumJSON(t *testing.T) {
	tm := NewTagManager()
	m := NewMetadata()
	m.Add(tm.Container.Title, "Artists")
	d := NewDatum(m, tm.Container.Title, tm.Audio.Artist, tm.Audio.Album)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"types":["container.title","audio.artist","audio.album"],"metadata":{"container.title":["Artists"]}}`, string(b))
}

func data(tm *TagManager, artists ...string) []*Datum {
	out := make([]*Datum, len(artists))
	for i, a := range artists {
		m := NewMetadata()
		m.Add(tm.Audio.Artist, a)
		out[i] = NewDatum(m)
	}
	return out
}

func TestSnapshotReadBounds(t *testing.T) {
	tm := NewTagManager()
	s := NewSnapshot(3, data(tm, "a", "b", "c", "d"), nil)
	assert.Equal(t, uint32(4), s.Total())
	assert.Nil(t, s.AlphaMap())

	f, err := s.Read(0, 4).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(3), f.Sequence)
	assert.Len(t, f.Data, 4)

	f, err = s.Read(1, 3).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), f.Index)
	assert.Equal(t, "b", f.Data[0].Primary(tm.Audio.Artist))

	f, err = s.Read(4, 0).Wait(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.Data)

	assert.Panics(t, func() { s.Read(2, 3) })
	assert.Panics(t, func() { s.Read(5, 0) })
	assert.Panics(t, func() { s.Read(1, ^uint32(0)) })
}

func TestSnapshotReadDoesNotAlias(t *testing.T) {
	tm := NewTagManager()
	s := NewSnapshot(1, data(tm, "a", "b", "c"), nil)
	f, _ := s.Read(0, 2).Wait(context.Background())
	f.Data = append(f.Data, nil)

	f, _ = s.Read(2, 1).Wait(context.Background())
	assert.Equal(t, "c", f.Data[0].Primary(tm.Audio.Artist))
}

func TestAlpha(t *testing.T) {
	tm := NewTagManager()
	alpha := Alpha(data(tm, "10cc", "Air", "Alan", "bill", "Zappa", ""), tm.Audio.Artist)
	assert.Equal(t, []AlphaEntry{
		{Letter: "#", Index: 0},
		{Letter: "A", Index: 1},
		{Letter: "B", Index: 3},
		{Letter: "Z", Index: 4},
		{Letter: "#", Index: 5},
	}, alpha)
	assert.NotNil(t, Alpha(nil, tm.Audio.Artist))
}

func TestArtworkURI(t *testing.T) {
	tm := NewTagManager()
	m := NewMetadata()
	_, ok := ArtworkURI("http://localhost:8080", tm, m)
	assert.False(t, ok)

	m.Add(tm.Audio.Album, "Kind of Blue")
	uri, ok := ArtworkURI("http://localhost:8080/", tm, m)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8080/artwork/Kind%20of%20Blue", uri)
}

func TestMemoryLibraryDefault(t *testing.T) {
	tm := NewTagManager()
	lib, err := NewLibrary(context.Background(), LibraryConfig{})
	require.NoError(t, err)
	defer lib.Close()

	tracks, err := lib.Load(context.Background(), tm)
	require.NoError(t, err)
	require.Len(t, tracks, 14)
	assert.Equal(t, "So What", tracks[0].Primary(tm.Audio.Title))
	v, _ := tracks[13].Get(tm.Audio.Artist)
	assert.Equal(t, []string{"Miles Davis", "Gil Evans"}, v.Values())
}

func TestSqliteLibrarySeedsOnce(t *testing.T) {
	tm := NewTagManager()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "library.db")

	lib, err := NewLibrary(ctx, LibraryConfig{Backend: BackendSqlite, DBPath: path})
	require.NoError(t, err)
	tracks, err := lib.Load(ctx, tm)
	require.NoError(t, err)
	require.Len(t, tracks, 14)
	require.NoError(t, lib.Close())

	fixture := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(fixture, []byte(`[{"metadata":[{"tag":"audio.title","values":["x"]}]}]`), 0o644))

	lib, err = NewLibrary(ctx, LibraryConfig{Backend: BackendSqlite, DBPath: path, Fixture: fixture})
	require.NoError(t, err)
	defer lib.Close()
	again, err := lib.Load(ctx, tm)
	require.NoError(t, err)
	require.Len(t, again, 14)
	for i := range tracks {
		assert.Equal(t, ToTrack(tracks[i]), ToTrack(again[i]))
	}
}

func TestNewLibraryErrors(t *testing.T) {
	ctx := context.Background()
	_, err := NewLibrary(ctx, LibraryConfig{Backend: "tape"})
	assert.ErrorIs(t, err, models.ErrNotSupported)

	_, err = NewLibrary(ctx, LibraryConfig{Backend: BackendSqlite})
	assert.Error(t, err)

	_, err = NewLibrary(ctx, LibraryConfig{Fixture: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	_, err = ReadTracks(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestDecodeData(t *testing.T) {
	tm := NewTagManager()
	m := NewMetadata()
	m.Add(tm.Audio.Artist, "Air")
	b, err := json.Marshal([]*Datum{NewDatum(m, tm.Audio.Artist, tm.Audio.Album)})
	require.NoError(t, err)

	got, err := DecodeData(tm, b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []*Tag{tm.Audio.Artist, tm.Audio.Album}, got[0].Types())
	assert.Equal(t, "Air", got[0].Primary(tm.Audio.Artist))

	_, err = DecodeData(tm, []byte(`[{"types":["video.codec"]}]`))
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = DecodeData(tm, []byte(`[{"metadata":{"audio.bitrate":["320"]}}]`))
	assert.ErrorIs(t, err, models.ErrNotFound)
}
