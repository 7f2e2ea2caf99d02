package vecindex

import (
	"fmt"

	"github.com/poiesic/ontomap/core"
)

// Key prefix for corpus entries.
const entryPrefix = "corent"

// makeEntryKey generates a key for a corpus entry by ID.
func makeEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entryPrefix, id))
}
