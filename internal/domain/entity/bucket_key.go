package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// bucketKeyPrefix namespaces limiter state inside a store shared with other data.
const bucketKeyPrefix = "bucket"

// BucketKey is a value object that identifies one client's bucket state in the store.
// It carries only the hashed form of the identity: the raw identity never reaches
// the store and cannot be recovered from it.
type BucketKey struct {
	digest string
}

// DeriveBucketKey maps a client identity to its stable state key.
// The mapping is deterministic (the same identity always yields the same key)
// and one-way (SHA-256), so distinct identities essentially never collide.
func DeriveBucketKey(identity string) BucketKey {
	sum := sha256.Sum256([]byte(identity))
	return BucketKey{digest: hex.EncodeToString(sum[:])}
}

// String returns the string representation for use as Redis key
func (k BucketKey) String() string {
	return fmt.Sprintf("%s:%s", bucketKeyPrefix, k.digest)
}

// IsValid validates the value object
func (k BucketKey) IsValid() bool {
	return len(k.digest) == hex.EncodedLen(sha256.Size)
}
