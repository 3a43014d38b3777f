// Package source fetches author pages from booknotification.com and runs the
// extraction chain over them.
//
// All requests made by one Client share a token-bucket limiter so a cycle
// over many authors never exceeds the configured request rate. A failed
// fetch is reported as a *FetchError naming the author and URL; callers skip
// that author and carry on.
package source
