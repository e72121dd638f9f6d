package splat

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Policy chooses which splats survive when there are more than the
// particle budget allows.
type Policy int

const (
	// PolicyByOpacity keeps the most opaque splats. Ties keep input order.
	PolicyByOpacity Policy = iota
	// PolicyRandom keeps a uniform random subset.
	PolicyRandom
)

func (p Policy) String() string {
	if p == PolicyRandom {
		return "random"
	}
	return "opacity"
}

// ParsePolicy maps "opacity" (or "by-opacity") and "random" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "opacity", "by-opacity", "":
		return PolicyByOpacity, nil
	case "random":
		return PolicyRandom, nil
	}
	return 0, fmt.Errorf("%w: unknown selection policy %q", ErrInvalidParameter, s)
}

// Select reduces splats to at most maxCount entries. When the input
// already fits it is returned unchanged, same slice and order.
//
// PolicyRandom draws from rng. A nil rng is seeded from the wall clock,
// so such calls are not reproducible; pass a seeded generator to get the
// same subset every time.
func Select(splats []Splat, maxCount int, policy Policy, rng *rand.Rand) ([]Splat, error) {
	if maxCount <= 0 {
		return nil, fmt.Errorf("%w: max count must be positive, got %d", ErrInvalidParameter, maxCount)
	}
	if len(splats) <= maxCount {
		return splats, nil
	}

	diagf("select: %d -> %d by %s", len(splats), maxCount, policy)
	switch policy {
	case PolicyRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return selectRandom(splats, maxCount, rng), nil
	default:
		return selectByOpacity(splats, maxCount), nil
	}
}

func selectByOpacity(splats []Splat, maxCount int) []Splat {
	sorted := make([]Splat, len(splats))
	copy(sorted, splats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Opacity > sorted[j].Opacity
	})
	return sorted[:maxCount:maxCount]
}

// selectRandom runs a partial Fisher-Yates shuffle over the indices and
// returns the chosen splats in input order.
func selectRandom(splats []Splat, maxCount int, rng *rand.Rand) []Splat {
	idx := make([]int, len(splats))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < maxCount; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	chosen := idx[:maxCount]
	sort.Ints(chosen)

	out := make([]Splat, maxCount)
	for i, k := range chosen {
		out[i] = splats[k]
	}
	return out
}
