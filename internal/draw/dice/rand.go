package dice

import "math/rand"

// NewRand returns a *rand.Rand drawing its bits from src, for libraries that
// take a standard generator. The result is not safe for concurrent use.
//
// Postcondition: r.Intn(n) == src.Intn(n) for a Source whose values are
// already below n, so FixedSource sequences carry through.
func NewRand(src Source) *rand.Rand {
	return rand.New(randSource{src: src})
}

type randSource struct {
	src Source
}

// Int63 places the first draw in the high 31 bits, which rand.Rand.Int31
// reads back unchanged.
func (r randSource) Int63() int64 {
	hi := int64(r.src.Intn(1 << 31))
	lo := int64(r.src.Intn(1 << 31))
	return hi<<32 | lo<<1 | int64(r.src.Intn(2))
}

func (randSource) Seed(int64) {}
