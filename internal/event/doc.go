// Package event provides the Event record produced for each conference session URL.
//
// An Event is created with only its URL set and default name, rating and review
// count. The batch runner fills the remaining fields once per run, after which the
// ranking step orders Events by rating without modifying them.
package event
