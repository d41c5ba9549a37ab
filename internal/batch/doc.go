// Package batch runs fetch and extraction for a list of events on a bounded worker pool.
//
// Each event is owned by exactly one task while it runs. A task builds its result
// locally and commits it to the event only when every stage succeeds, so a failure at
// any stage leaves the event at its defaults. Run blocks until all tasks finish and
// returns a Summary naming each failed URL and the stage that failed.
package batch
