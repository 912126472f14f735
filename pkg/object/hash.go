package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-256 of the envelope "type len\0content".
// Blob digests are HashObject(TypeBlob, data); commit digests are
// HashObject(TypeCommit, CommitIdentityPayload(c)).
func HashObject(objType ObjectType, data []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	h := sha256.New()
	h.Write([]byte(header))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashBlob returns the digest a blob with the given content is stored under.
func HashBlob(data []byte) Hash {
	return HashObject(TypeBlob, data)
}

// HashCommit returns the identity digest of c. The signature is not part
// of the identity.
func HashCommit(c *CommitObj) Hash {
	return HashObject(TypeCommit, CommitIdentityPayload(c))
}

// Short returns the first n characters of h, or h itself when shorter.
func (h Hash) Short(n int) string {
	if n <= 0 || len(h) <= n {
		return string(h)
	}
	return string(h[:n])
}
