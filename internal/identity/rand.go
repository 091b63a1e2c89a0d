package identity

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// Rand is the random source used for all generation. *math/rand/v2.Rand
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// lockedRand makes a *mrand.Rand safe for use from several goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *mrand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// NewRand returns a goroutine-safe ChaCha8 source seeded from crypto/rand.
func NewRand() Rand {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failure is unrecoverable
		panic("crypto/rand: " + err.Error())
	}
	return &lockedRand{r: mrand.New(mrand.NewChaCha8(seed))}
}

// NewSeededRand returns a deterministic source for the given seed.
func NewSeededRand(seed uint64) Rand {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	return &lockedRand{r: mrand.New(mrand.NewChaCha8(s))}
}

func pick(r Rand, s []string) string {
	return s[r.IntN(len(s))]
}

// fill expands a template: D becomes a random digit, L a random uppercase
// letter, anything else is copied.
func fill(r Rand, template string) string {
	buf := make([]byte, 0, len(template))
	for i := 0; i < len(template); i++ {
		switch template[i] {
		case 'D':
			buf = append(buf, byte('0'+r.IntN(10)))
		case 'L':
			buf = append(buf, byte('A'+r.IntN(26)))
		default:
			buf = append(buf, template[i])
		}
	}
	return string(buf)
}
