package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
)

// Supported content digests. Both produce 256-bit values.
const (
	HashSHA256 = "sha256"
	HashBLAKE3 = "blake3"
)

// DefaultHashAlgorithm is used when no digest is configured.
const DefaultHashAlgorithm = HashSHA256

func normalizeAlgorithm(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return DefaultHashAlgorithm, nil
	case HashSHA256, HashBLAKE3:
		return name, nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", name)
	}
}

func newHasher(algorithm string) hash.Hash {
	if algorithm == HashBLAKE3 {
		return blake3.New()
	}
	return sha256.New()
}

// digestHex returns the lowercase hex digest of data. algorithm must already
// be normalized.
func digestHex(algorithm string, data []byte) string {
	hasher := newHasher(algorithm)
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
