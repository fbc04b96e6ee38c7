package model

import "github.com/kilianp07/railplan/core/graph"

// LiveState is the observed position of a train inside the station. The train
// travels the edge between From and To towards To.
type LiveState struct {
	From           graph.VertexID
	To             graph.VertexID
	ObservedAt     int
	PassedPlatform bool
}
