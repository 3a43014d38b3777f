// Package schedule persists the tracked release schedule as a JSON document
// and prunes records that were released long ago.
//
// The store is read once at the start of a cycle and written once at the
// end. Writes go through a temp file and rename so an interrupted save never
// leaves a truncated document behind. A document that cannot be decoded is
// moved aside and the cycle continues from an empty schedule.
package schedule
