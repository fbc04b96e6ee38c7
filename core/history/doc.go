// Package history persists solved work plans so that a restarted service can
// re-plan against the last plan of its station. Records are stored as JSON
// lines, optionally rotated, or in SQLite.
package history
