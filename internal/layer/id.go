package layer

import (
	"crypto/rand"
	"encoding/binary"
)

// ID is a 128-bit layer identifier. The original program uses a UUIDv4;
// no UUID library appears anywhere in the retrieval pack, so this package
// generates its own 128-bit random identifier from crypto/rand, which
// gives the same collision-resistance property a v4 UUID relies on
// without pulling in a dependency nothing else in the corpus uses.
type ID [16]byte

// Zero is the nil layer ID, used for "no layer" / root-level results.
var Zero ID

// NewID generates a fresh random layer ID.
func NewID() ID {
	var id ID
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	copy(id[:], buf[:])
	return id
}

// Uint64Pair returns the two halves of the ID, useful for ordering or
// hashing without importing a UUID type elsewhere.
func (id ID) Uint64Pair() (hi, lo uint64) {
	return binary.BigEndian.Uint64(id[:8]), binary.BigEndian.Uint64(id[8:])
}
