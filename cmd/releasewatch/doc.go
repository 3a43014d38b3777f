// Package main hosts the releasewatch CLI entrypoint and command graph.
//
// Running the binary with no subcommand performs one tracking cycle: fetch
// every active author's page, reconcile the findings with the saved
// schedule, send whatever notifications are due and save the result. The
// remaining commands schedule cycles in-process, inspect the saved schedule
// and run ledger, exercise the extractor against a single page, and scaffold
// configuration.
//
// Keep this package lean: the cycle itself lives in internal/tracker and the
// commands here only resolve configuration, build loggers and format output.
package main
