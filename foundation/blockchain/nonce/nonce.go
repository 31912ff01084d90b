// Package nonce provides a lazy stream of candidate nonce values for the
// mining search. The stream never repeats a value, walking the integers in
// growing chunks that are shuffled before use. Randomizing the visit order
// keeps miners that start at the same moment from racing each other over
// the same small integers.
package nonce

import (
	"math/rand"
	"time"
)

// Chunk size bounds for each round of the stream.
const (
	minStep = 10_000
	maxStep = 100_000
)

// Generator produces an effectively infinite stream of non-repeating
// nonce candidates. A Generator is not safe for concurrent use; each
// mining attempt owns its own.
type Generator struct {
	rnd   *rand.Rand
	base  uint64
	chunk []uint64
	next  int
}

// NewGenerator constructs a generator with a time-based seed.
func NewGenerator() *Generator {
	return NewGeneratorWithSeed(time.Now().UnixNano())
}

// NewGeneratorWithSeed constructs a generator with the specified seed so
// tests can make the stream reproducible.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next candidate from the stream. The stream can be
// abandoned at any point; values are produced one chunk at a time.
func (g *Generator) Next() uint64 {
	if g.next == len(g.chunk) {
		g.refill()
	}

	n := g.chunk[g.next]
	g.next++

	return n
}

// refill loads the next contiguous range of integers into the chunk and
// shuffles it. The chunk size is resampled each round so two generators
// never stay aligned.
func (g *Generator) refill() {
	step := uint64(minStep + g.rnd.Intn(maxStep-minStep))

	if cap(g.chunk) < int(step) {
		g.chunk = make([]uint64, step)
	}
	g.chunk = g.chunk[:step]

	for i := range g.chunk {
		g.chunk[i] = g.base + uint64(i)
	}

	g.rnd.Shuffle(len(g.chunk), func(i, j int) {
		g.chunk[i], g.chunk[j] = g.chunk[j], g.chunk[i]
	})

	g.base += step
	g.next = 0
}
