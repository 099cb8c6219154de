package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math/big"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	// Digits is the length of every generated id
	Digits = 18

	entropyBytes = 16
)

var (
	// 9 * 10^17 values keep the first digit non-zero and the result below 2^63
	idSpace  = new(big.Int).Mul(big.NewInt(9), new(big.Int).Exp(big.NewInt(10), big.NewInt(Digits-1), nil))
	idOffset = new(big.Int).Exp(big.NewInt(10), big.NewInt(Digits-1), nil)
)

// Generator produces numeric shop process ids.
// Each id hashes a monotonic reading, the wall clock and 16 random bytes with BLAKE2b-256
// and reduces the digest to an 18 digit decimal. It is safe for concurrent use.
type Generator struct {
	start  time.Time
	random io.Reader
	now    func() time.Time
}

// NewGenerator creates a generator reading entropy from crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		start:  time.Now(),
		random: rand.Reader,
		now:    time.Now,
	}
}

// Next returns a new id
func (g *Generator) Next() string {
	var buf [16 + entropyBytes]byte

	now := g.now()
	binary.BigEndian.PutUint64(buf[0:8], uint64(now.Sub(g.start).Nanoseconds()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(now.UnixNano()))
	if _, err := io.ReadFull(g.random, buf[16:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic("idgen: reading entropy: " + err.Error())
	}

	digest := blake2b.Sum256(buf[:])
	n := new(big.Int).SetBytes(digest[:])
	n.Mod(n, idSpace)
	n.Add(n, idOffset)
	return n.String()
}
