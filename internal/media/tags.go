// Package media holds the metadata model shared by media servers and their
// consumers: tags, values, browse data, snapshots and the track library.
package media

import (
	"fmt"
	"strings"
)

// Tag is a namespaced metadata key. Tags are compared by identity and are
// only created by a TagManager.
type Tag struct {
	ns   string
	name string
}

func (t *Tag) Namespace() string { return t.ns }

// Name is the tag name local to its namespace.
func (t *Tag) Name() string { return t.name }

// FullName is the namespace-qualified name, e.g. "audio.artist".
func (t *Tag) FullName() string { return t.ns + "." + t.name }

func (t *Tag) String() string { return t.FullName() }

// Namespace is a set of tags sharing a prefix.
type Namespace struct {
	name  string
	tags  map[string]*Tag
	order []*Tag
}

func newNamespace(name string) *Namespace {
	return &Namespace{name: name, tags: make(map[string]*Tag)}
}

func (n *Namespace) add(name string) *Tag {
	if _, ok := n.tags[name]; ok {
		panic(fmt.Sprintf("media: duplicate tag %s.%s", n.name, name))
	}
	t := &Tag{ns: n.name, name: name}
	n.tags[name] = t
	n.order = append(n.order, t)
	return t
}

func (n *Namespace) Name() string { return n.name }

// Tag looks up a tag by its local name, ignoring case.
func (n *Namespace) Tag(name string) (*Tag, bool) {
	t, ok := n.tags[strings.ToLower(name)]
	return t, ok
}

// All returns the namespace's tags in registration order.
func (n *Namespace) All() []*Tag {
	return append([]*Tag(nil), n.order...)
}

type AudioTags struct {
	*Namespace
	Title       *Tag
	Artist      *Tag
	Album       *Tag
	AlbumArtist *Tag
	AlbumTitle  *Tag
	Genre       *Tag
	Track       *Tag
	Duration    *Tag
	Artwork     *Tag
	Uri         *Tag
	Composer    *Tag
	Year        *Tag
}

type ContainerTags struct {
	*Namespace
	Title *Tag
	Id    *Tag
}

// TagManager is the registry of every known tag.
type TagManager struct {
	Audio     AudioTags
	Container ContainerTags

	namespaces map[string]*Namespace
}

func NewTagManager() *TagManager {
	audio := newNamespace("audio")
	container := newNamespace("container")
	return &TagManager{
		Audio: AudioTags{
			Namespace:   audio,
			Title:       audio.add("title"),
			Artist:      audio.add("artist"),
			Album:       audio.add("album"),
			AlbumArtist: audio.add("albumartist"),
			AlbumTitle:  audio.add("albumtitle"),
			Genre:       audio.add("genre"),
			Track:       audio.add("track"),
			Duration:    audio.add("duration"),
			Artwork:     audio.add("artwork"),
			Uri:         audio.add("uri"),
			Composer:    audio.add("composer"),
			Year:        audio.add("year"),
		},
		Container: ContainerTags{
			Namespace: container,
			Title:     container.add("title"),
			Id:        container.add("id"),
		},
		namespaces: map[string]*Namespace{"audio": audio, "container": container},
	}
}

// Lookup resolves a full tag name such as "container.title". A name without
// a namespace is looked up in the audio namespace.
func (m *TagManager) Lookup(name string) (*Tag, bool) {
	ns, local, ok := strings.Cut(name, ".")
	if !ok {
		return m.Audio.Tag(name)
	}
	n, ok := m.namespaces[strings.ToLower(ns)]
	if !ok {
		return nil, false
	}
	return n.Tag(local)
}
