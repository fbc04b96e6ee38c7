// Package graph models a station track topology as an arena of vertices and
// edges addressed by stable integer ids.
//
// Vertices expose their traversal rules as connection pairs: a train that
// arrives on one edge of a pair may only leave on the other edge of the same
// pair. Blocking, switch status and freeze conditions are plain fields that
// callers mutate between planning calls.
package graph
