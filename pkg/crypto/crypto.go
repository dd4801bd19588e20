package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/big"
)

// DeriveKey computes a deterministic record key from its logical identity.
// The parts are length-prefixed before hashing so that ("ab", "c") and
// ("a", "bc") never collide. Records stored under a derived key implement
// create-if-absent semantics: inserting a second record with the same
// identity fails on the primary key.
func DeriveKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(p)))
		h.Write(size[:])
		h.Write([]byte(p))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}
