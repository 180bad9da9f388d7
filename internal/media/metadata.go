package media

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"avtopology/internal/models"
)

// Value is one or more strings stored under a tag. The first is the primary
// value.
type Value struct {
	values []string
}

func NewValue(first string, rest ...string) Value {
	return Value{values: append([]string{first}, rest...)}
}

func (v Value) Primary() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

func (v Value) Values() []string {
	return slices.Clone(v.values)
}

// Metadata maps tags to values.
type Metadata struct {
	values map[*Tag]Value
}

func NewMetadata() *Metadata {
	return &Metadata{values: make(map[*Tag]Value)}
}

// Add stores v under tag, appending to any value already present.
func (m *Metadata) Add(tag *Tag, v string) {
	if cur, ok := m.values[tag]; ok {
		m.values[tag] = Value{values: append(cur.values, v)}
		return
	}
	m.values[tag] = NewValue(v)
}

func (m *Metadata) Get(tag *Tag) (Value, bool) {
	v, ok := m.values[tag]
	return v, ok
}

// Primary returns the primary value under tag, or "" when absent.
func (m *Metadata) Primary(tag *Tag) string {
	return m.values[tag].Primary()
}

// Tags returns the tags present, ordered by full name.
func (m *Metadata) Tags() []*Tag {
	tags := make([]*Tag, 0, len(m.values))
	for t := range m.values {
		tags = append(tags, t)
	}
	slices.SortFunc(tags, func(a, b *Tag) int { return strings.Compare(a.FullName(), b.FullName()) })
	return tags
}

func (m *Metadata) Len() int { return len(m.values) }

func (m *Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(m.values))
	for t, v := range m.values {
		out[t.FullName()] = v.values
	}
	return json.Marshal(out)
}

// FromTrack converts a stored track. Unknown tags are skipped and reported.
func FromTrack(tm *TagManager, t models.Track) (m *Metadata, unknown []string) {
	m = NewMetadata()
	for _, md := range t.Metadata {
		tag, ok := tm.Lookup(md.Tag)
		if !ok {
			unknown = append(unknown, md.Tag)
			continue
		}
		for _, v := range md.Values {
			m.Add(tag, v)
		}
	}
	return m, unknown
}

// ToTrack is the inverse of FromTrack.
func ToTrack(m *Metadata) models.Track {
	var t models.Track
	for _, tag := range m.Tags() {
		t.Metadata = append(t.Metadata, models.Metadatum{Tag: tag.FullName(), Values: m.values[tag].Values()})
	}
	return t
}

// Datum is a browse item: metadata plus the ordered tags naming the
// dimensions it can be browsed by. A track has no types.
type Datum struct {
	*Metadata
	types []*Tag
}

func NewDatum(m *Metadata, types ...*Tag) *Datum {
	return &Datum{Metadata: m, types: types}
}

func (d *Datum) Types() []*Tag {
	return slices.Clone(d.types)
}

func (d *Datum) MarshalJSON() ([]byte, error) {
	types := make([]string, len(d.types))
	for i, t := range d.types {
		types[i] = t.FullName()
	}
	return json.Marshal(struct {
		Types    []string  `json:"types"`
		Metadata *Metadata `json:"metadata"`
	}{types, d.Metadata})
}

type wireDatum struct {
	Types    []string            `json:"types"`
	Metadata map[string][]string `json:"metadata"`
}

// DecodeData reads the JSON form written by Datum.MarshalJSON. Unknown
// tags are an error.
func DecodeData(tm *TagManager, b []byte) ([]*Datum, error) {
	var wire []wireDatum
	if err := json.Unmarshal(b, &wire); err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	out := make([]*Datum, 0, len(wire))
	for _, w := range wire {
		d := NewDatum(NewMetadata())
		for _, name := range w.Types {
			tag, ok := tm.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("datum type %q: %w", name, models.ErrNotFound)
			}
			d.types = append(d.types, tag)
		}
		for name, values := range w.Metadata {
			tag, ok := tm.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("datum tag %q: %w", name, models.ErrNotFound)
			}
			for _, v := range values {
				d.Add(tag, v)
			}
		}
		out = append(out, d)
	}
	return out, nil
}
