// Package extract turns a fetched author page into candidate release drafts.
//
// Extraction is layered: structured data (JSON-LD) is trusted most, then the
// announcement sentences author pages use ("has a new book coming out on ...
// called ..."), and finally a tabular/listing scan that only runs when
// nothing better was found. Every strategy fails soft: a malformed block or
// an unparseable date skips that match and is reported alongside the drafts
// instead of aborting the page.
package extract
