package expand

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/tagtree/pkg/graph"
)

// FreeTags returns the distinct tags of n's photo that n does not already
// link through, in photo order, leaving out any tag in exclude.
func FreeTags(n *graph.Node, exclude ...string) []string {
	var out []string
	for _, t := range n.Photo.TagList() {
		if _, linked := n.Neighbor(t); linked {
			continue
		}
		if slices.Contains(exclude, t) || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// PickTag draws a tag uniformly from FreeTags(n, exclude...). It reports
// false when there is none.
func PickTag(rng *rand.Rand, n *graph.Node, exclude ...string) (string, bool) {
	tags := FreeTags(n, exclude...)
	if len(tags) == 0 {
		return "", false
	}
	return tags[rng.IntN(len(tags))], true
}
