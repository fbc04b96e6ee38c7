// Package paths discovers the routes a train can take through a station.
//
// The search runs over directed positions rather than plain vertices: the
// edges a train may leave a vertex on depend on the edge it arrived on. From
// every input the search stops at the first typed edge it traverses, which
// yields one shortest route per directed platform. From every platform a
// second search reaches the station outputs.
package paths
