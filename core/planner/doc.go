// Package planner assigns every scheduled train to a platform of its station
// and derives the switch and traffic light commands of the chosen routes.
//
// Each planning call recomputes the routes of the current graph state, keeps
// the (train, platform) cells whose routes fit the schedule, and encodes the
// choice as a boolean model: exactly one cell per train and no two cells
// whose edge occupation windows overlap. Re-planning variants pin a mirror of
// the previous plan and minimise the number of trains moved to another
// platform.
package planner
