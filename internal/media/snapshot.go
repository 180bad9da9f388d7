package media

import (
	"fmt"
	"strings"
	"unicode"

	"avtopology/internal/future"
)

// Fragment is one page read from a snapshot.
type Fragment struct {
	Index    uint32   `json:"index"`
	Sequence uint32   `json:"sequence"`
	Data     []*Datum `json:"data"`
}

// AlphaEntry marks the first index whose primary value starts with Letter.
// Values starting with anything but a letter are grouped under "#".
type AlphaEntry struct {
	Letter string `json:"letter"`
	Index  uint32 `json:"index"`
}

// Snapshot is a frozen result set.
type Snapshot struct {
	sequence uint32
	data     []*Datum
	alpha    []AlphaEntry
}

// NewSnapshot takes ownership of data. A nil alpha map means jump navigation
// is unsupported.
func NewSnapshot(sequence uint32, data []*Datum, alpha []AlphaEntry) *Snapshot {
	return &Snapshot{sequence: sequence, data: data, alpha: alpha}
}

func (s *Snapshot) Total() uint32 { return uint32(len(s.data)) }

func (s *Snapshot) Sequence() uint32 { return s.sequence }

func (s *Snapshot) AlphaMap() []AlphaEntry { return s.alpha }

// Read returns data[index:index+count]. Reading past Total panics.
func (s *Snapshot) Read(index, count uint32) future.Future[*Fragment] {
	if uint64(index)+uint64(count) > uint64(len(s.data)) {
		panic(fmt.Sprintf("media: Read(%d, %d) beyond snapshot %d of %d items", index, count, s.sequence, len(s.data)))
	}
	return future.Resolved(&Fragment{
		Index:    index,
		Sequence: s.sequence,
		Data:     s.data[index : index+count : index+count],
	}, nil)
}

// Alpha builds the jump map of data sorted by the primary value of tag.
func Alpha(data []*Datum, tag *Tag) []AlphaEntry {
	alpha := []AlphaEntry{}
	for i, d := range data {
		letter := initial(d.Primary(tag))
		if n := len(alpha); n > 0 && alpha[n-1].Letter == letter {
			continue
		}
		alpha = append(alpha, AlphaEntry{Letter: letter, Index: uint32(i)})
	}
	return alpha
}

func initial(s string) string {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
		return "#"
	}
	return "#"
}
