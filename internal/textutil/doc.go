// Package textutil holds the small text-cleaning helpers shared by the
// extractor and the identity scheme: whitespace collapsing, quote trimming and
// accent folding.
package textutil
