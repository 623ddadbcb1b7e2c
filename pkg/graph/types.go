package graph

import (
	"math"
	"strings"
)

// MaxDegree is the maximum number of adjacency entries a node may hold.
const MaxDegree = 4

// NodeID identifies a node. IDs are assigned 0, 1, 2, ... in creation order,
// so the root is always 0.
type NodeID int

// NoParent is passed where a parent is expected to mean "this is the root".
const NoParent NodeID = -1

// =============================================================================
// Vec - 2D vector
// =============================================================================

// Vec is a 2D vector used for positions, velocities and forces.
type Vec struct {
	X float64 `json:"x" bson:"x" toml:"x"`
	Y float64 `json:"y" bson:"y" toml:"y"`
}

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v*s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Len2 returns the squared length of v.
func (v Vec) Len2() float64 { return v.X*v.X + v.Y*v.Y }

// Dist returns the Euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// =============================================================================
// Photo - source image metadata
// =============================================================================

// Photo is the image a node was grown from.
type Photo struct {
	FullURL  string `json:"full" bson:"full"`
	ThumbURL string `json:"thumb" bson:"thumb"`
	Tags     string `json:"tags" bson:"tags"` // whitespace-delimited
}

// TagList splits the photo's tag string on whitespace.
func (p Photo) TagList() []string { return strings.Fields(p.Tags) }

// TagCount returns the number of whitespace-delimited tags.
func (p Photo) TagCount() int { return len(p.TagList()) }

// =============================================================================
// Pair, Link - edge identity
// =============================================================================

// Pair is the canonical identity of an edge: the unordered pair of its
// endpoints, stored with Lo < Hi.
type Pair struct {
	Lo, Hi NodeID
}

// MakePair returns the canonical pair for the edge between a and b.
func MakePair(a, b NodeID) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Lo: a, Hi: b}
}

// Link is an edge together with the tag that produced it.
type Link struct {
	Pair
	Label string
}
