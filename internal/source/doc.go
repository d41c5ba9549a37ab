// Package source reads the list of event page URLs to process.
//
// The list is plain text with one URL per line. Blank lines are skipped and the
// remaining lines keep their file order.
package source
