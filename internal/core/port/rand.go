package port

// Rand is the generator handle threaded through every operation that needs
// randomness. *math/rand.Rand satisfies it. Two handles never share state.
type Rand interface {
	// Shuffle pseudo-randomizes the order of n elements using swap.
	Shuffle(n int, swap func(i, j int))
	// Float64 returns a pseudo-random number in [0,1).
	Float64() float64
}
