package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Combine строит хеш единицы: H( content || dep1 || dep2 ... ).
// Порядок deps должен быть детерминированным (Edges в dag отсортированы).
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashString is a Digest of an arbitrary key (crate names, options).
func HashString(s string) Digest {
	return sha256.Sum256([]byte(s))
}

// Hex returns the lowercase hex form, used for file names.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}
