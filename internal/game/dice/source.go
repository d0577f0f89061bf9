// Package dice provides the randomness abstraction for die rolls so turn
// sequences are reproducible in tests.
package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// CryptoSource is a Source backed by crypto/rand.
type CryptoSource struct{}

// NewCryptoSource creates a CryptoSource.
func NewCryptoSource() *CryptoSource {
	return &CryptoSource{}
}

// Intn returns a uniformly distributed int in [0, n).
//
// Precondition: n > 0, panics otherwise.
func (s *CryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: CryptoSource.Intn precondition violated: n must be > 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand reading from the OS entropy pool does not fail in practice.
		panic("dice: reading crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// SeededSource is a deterministic Source backed by math/rand, for
// reproducible turn sequences in tests and local play.
type SeededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource creates a SeededSource with the given seed.
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{rng: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a deterministic int in [0, n).
//
// Precondition: n > 0, panics otherwise.
func (s *SeededSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
