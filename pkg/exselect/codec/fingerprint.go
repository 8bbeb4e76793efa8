package codec

import (
	"encoding/hex"

	"github.com/minio/highwayhash"
)

// fingerprintKey is the fixed 32-byte HighwayHash key for dataset fingerprints.
var fingerprintKey = []byte("exselect dataset fingerprint key")

// Fingerprint returns the hex HighwayHash-256 of an uploaded payload.
func Fingerprint(data []byte) string {
	sum := highwayhash.Sum(data, fingerprintKey)
	return hex.EncodeToString(sum[:])
}
