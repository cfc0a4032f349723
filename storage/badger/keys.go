package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
)

// Key prefixes for different data types
const (
	chunkPrefix      = "chk"
	chunkIDPrefix    = "chkid"
	chunkDimPrefix   = "chkdim"
	chunkSeqPrefix   = "chkseq"
	checkpointPrefix = "rbchkpt"
)

func errBackendClosed() error {
	return storage.ErrBackendUnavailable
}

// makeChunkKey generates a composite key for the primary chunk record.
// Format: prefix:domain:sequence
// Sequence is written BigEndian so lexicographic iteration follows
// insertion order, which is what gives searches their stable tie-break.
func makeChunkKey(domain core.Domain, seq uint64) []byte {
	prefix := []byte(fmt.Sprintf("%s:%s:", chunkPrefix, domain))
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeChunkPrefix generates the iteration prefix for a domain's chunks.
func makeChunkPrefix(domain core.Domain) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkPrefix, domain))
}

// makeChunkIDKey generates a key for the ID-to-sequence index.
// Format: prefix:domain:id
func makeChunkIDKey(domain core.Domain, id core.ID) []byte {
	prefix := []byte(fmt.Sprintf("%s:%s:", chunkIDPrefix, domain))
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkIDPrefix generates the iteration prefix for a domain's ID index.
func makeChunkIDPrefix(domain core.Domain) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkIDPrefix, domain))
}

// makeDimensionKey generates the key holding a domain's vector dimension.
func makeDimensionKey(domain core.Domain) []byte {
	return []byte(fmt.Sprintf("%s:%s", chunkDimPrefix, domain))
}

// makeSequenceName generates the badger sequence name for a domain.
func makeSequenceName(domain core.Domain) string {
	return fmt.Sprintf("%s:%s", chunkSeqPrefix, domain)
}

// makeCheckpointKey generates the key for a domain's rebuild checkpoint.
func makeCheckpointKey(domain core.Domain) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, domain))
}

// encodeUint64 encodes a value as 8 BigEndian bytes.
func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// decodeUint64 decodes 8 BigEndian bytes.
func decodeUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, storage.ErrSerializationFailed
	}
	return binary.BigEndian.Uint64(data), nil
}
