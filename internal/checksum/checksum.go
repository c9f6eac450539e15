package checksum

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Position maps key to a stable point inside a width×height canvas.
// The same key always lands on the same coordinates.
func Position(key string, width, height float64) (x, y float64) {
	h := sha256.Sum256([]byte(key))
	a := binary.BigEndian.Uint32(h[0:4])
	b := binary.BigEndian.Uint32(h[4:8])
	const max = float64(^uint32(0))
	return float64(a) / max * width, float64(b) / max * height
}
