package rtest

import (
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Rand returns a pseudorandom generator seeded from the test name,
// so a failing run replays identically when the same test is rerun.
func Rand(t testing.TB) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Name()))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, ^seed))
}

// RandomBytes returns n bytes drawn from [Rand].
func RandomBytes(t testing.TB, n int) []byte {
	r := Rand(t)
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(r.Uint32())
	}
	return out
}

// SignalScripts returns count scripts of length opcodes each,
// for driving producers that emit arbitrary signal sequences.
// Scripts differ between tests but are stable across runs of one test.
func SignalScripts(t testing.TB, count, length int) [][]byte {
	data := RandomBytes(t, count*length)
	scripts := make([][]byte, count)
	for i := range scripts {
		scripts[i] = data[i*length : (i+1)*length : (i+1)*length]
	}
	return scripts
}
