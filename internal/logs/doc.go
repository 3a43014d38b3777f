// Package logs reads the JSON daily log files written next to the console
// output.
//
// It decodes each line into an Entry, filters by cycle run id and minimum
// level, returns the last N matching entries with bounded memory, and
// follows a file as new lines are appended. It powers `releasewatch logs`.
package logs
