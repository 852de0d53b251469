package service

import (
	"crypto/rand"
	"math/big"
)

const shareAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const shareIDLen = 10

// NewShareID mints a short opaque identifier for a public share
// record. Fresh per call, never reused across sessions.
func NewShareID() string {
	b := make([]byte, shareIDLen)
	max := big.NewInt(int64(len(shareAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is
			// broken; there is no sane recovery at this level.
			panic(err)
		}
		b[i] = shareAlphabet[n.Int64()]
	}
	return string(b)
}
