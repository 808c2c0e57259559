package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/poirit/core"
)

// Key prefixes for different data types
const (
	enrichmentPrefix = "enrst"
	checkpointPrefix = "chkpt"
)

// makeEnrichmentKey generates a key for a cached enrichment.
// Format: prefix:hash(osmID), hash written in BigEndian order so keys
// under the prefix sort consistently.
func makeEnrichmentKey(osmID string) []byte {
	prefix := enrichmentPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(osmID)))
	return buf
}

// makeCheckpointKey generates a key for stage progress.
// Format: prefix:stage:city
func makeCheckpointKey(stage, city string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", checkpointPrefix, stage, city))
}
