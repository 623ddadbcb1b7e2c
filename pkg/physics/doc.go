// Package physics lays out a tag tree with a damped force simulation.
//
// Every node repels every other node with an inverse-square (Coulomb) force
// and is pulled towards its tree neighbours by a linear spring. Velocities
// are damped each tick, and nodes that would leave the viewport through the
// top or left edge are clamped and bounced back.
//
// A [Simulator] runs ticks until the system settles, reporting positions to
// a [render.Renderer] after every tick. Once settled it draws each edge that
// has not been drawn yet and hands back the next node that can still grow.
//
// Nodes are updated in place and in creation order, so a node later in the
// tick already sees the moved positions of earlier nodes.
package physics
