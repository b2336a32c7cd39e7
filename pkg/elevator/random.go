package elevator

import (
	"math/rand"

	"github.com/google/uuid"
)

// Source is the only nondeterminism the core consumes: the eco-mode
// coin-flip and the bytes behind request and log identifiers.
// Source는 시뮬레이션 코어가 사용하는 유일한 난수원입니다.
type Source interface {
	Float64() float64
	Read(p []byte) (n int, err error)
}

// NewSource returns a seeded Source. Equal seeds replay equal runs.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// coinFlip draws the eco-mode half-speed decision: true means move this tick.
func coinFlip(rng Source) bool {
	return rng.Float64() < 0.5
}

func newID(rng Source, prefix string) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return prefix + uuid.Nil.String()
	}
	return prefix + id.String()
}
