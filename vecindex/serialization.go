package vecindex

import (
	"github.com/poiesic/ontomap/core"
)

// MarshalCorpusEntry serializes a CorpusEntry to bytes.
func MarshalCorpusEntry(entry *core.CorpusEntry) []byte {
	buf := make([]byte, core.CorpusEntryMUS.Size(*entry))
	core.CorpusEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalCorpusEntry deserializes a CorpusEntry from bytes.
func UnmarshalCorpusEntry(data []byte) (*core.CorpusEntry, error) {
	entry, _, err := core.CorpusEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
