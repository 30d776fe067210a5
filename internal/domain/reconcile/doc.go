// Package reconcile decides whether two copies of timetable state mean the same thing.
//
// Local edits and snapshots pushed by the store carry volatile metadata (update
// timestamps, generation times), may omit optional fields that the other side spells
// out with their default value, and may list the same entities in a different order.
// None of that is a change worth writing. The comparisons here look through it so that
// callers only sync real differences and never bounce a snapshot back at the store.
//
// Every function is pure and safe for concurrent use. None of them fails: when an
// entity cannot be projected into its comparison view the collection check falls back
// to reference equality, which can only report "different".
package reconcile
