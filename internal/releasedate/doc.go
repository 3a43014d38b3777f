// Package releasedate owns the calendar Date type used for release dates and
// the tolerant parser that turns announcement text ("December 9, 2025",
// "12/09/2025", "Dec 2025") into a Date.
package releasedate
