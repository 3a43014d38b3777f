// Package preflight provides readiness checks for the files and services a
// tracking cycle depends on.
//
// The CLI "releasewatch check" command runs RunAll and prints one line per
// result so problems surface before the first scheduled cycle instead of as
// a failure alert. Checks that need the network use short timeouts and a
// single attempt.
package preflight
