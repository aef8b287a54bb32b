package trip

import (
	"fmt"
	"math/rand/v2"
)

// RouteColors returns n random, readable route colors drawn from seed.
// The same seed always yields the same colors, so a route keeps its colors between renders.
func RouteColors(seed uint64, n int) []string {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	colors := make([]string, n)
	for i := range colors {
		// keep channels away from white so lines stay visible on light map tiles
		r := 32 + rng.IntN(176)
		g := 32 + rng.IntN(176)
		b := 32 + rng.IntN(176)
		colors[i] = fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}
	return colors
}
