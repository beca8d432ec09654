// Package idgen produces collection-unique product identifiers.
package idgen

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// alphabet matches the URL-safe nanoid alphabet.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// Generator returns a new identifier on every call.
type Generator interface {
	NewID() string
}

// Func adapts a plain function to Generator.
type Func func() string

// NewID calls f.
func (f Func) NewID() string { return f() }

// Random returns a generator of n-character ids drawn from the nanoid alphabet.
func Random(n int) Generator {
	if n <= 0 {
		n = 6
	}
	return Func(func() string {
		buf := make([]byte, n)
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand never fails on supported platforms
			panic(err)
		}
		for i := range buf {
			buf[i] = alphabet[int(buf[i])&(len(alphabet)-1)]
		}
		return string(buf)
	})
}

var randomTail = big.NewInt(1 << 52)

// TimeRandom returns ids made of the current unix millis in base36 followed
// by a random base36 tail.
func TimeRandom() Generator {
	return Func(func() string {
		ms := strconv.FormatInt(time.Now().UnixMilli(), 36)
		n, err := rand.Int(rand.Reader, randomTail)
		if err != nil {
			panic(err)
		}
		return ms + strconv.FormatInt(n.Int64(), 36)
	})
}

// UUID returns random (v4) UUID strings.
func UUID() Generator {
	return Func(uuid.NewString)
}
