package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies a monitor topology. Zero means no topology has been
// observed yet.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// FingerprintOf hashes the corner points of every monitor. Each corner is
// packed as left|top<<32 and hashed on its own, and the hashes are combined
// with XOR, so the result does not depend on monitor order. Only the bounds
// take part; names and work areas do not.
func FingerprintOf(monitors []Monitor) Fingerprint {
	var fp uint64
	for _, m := range monitors {
		fp ^= hashCorner(m.Bounds.X, m.Bounds.Y)
		fp ^= hashCorner(m.Bounds.Right(), m.Bounds.Bottom())
	}
	return Fingerprint(fp)
}

func hashCorner(x, y int) uint64 {
	packed := uint64(uint32(int32(x))) | uint64(uint32(int32(y)))<<32
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], packed)
	return xxhash.Sum64(buf[:])
}
