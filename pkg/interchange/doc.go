// Package interchange reads and writes station topologies, train schedules
// and work plans as JSON or YAML documents.
//
// Documents list vertices and edges in id order. A vertex carries its
// connection pairs as {"Item1": a, "Item2": b} objects where -1 stands for
// "no edge". Enumerations are written as "<Type>_<Member>" tokens such as
// "VertexType_SWITCH" or "TrainType_CARGO"; the prefix is optional on input.
package interchange
