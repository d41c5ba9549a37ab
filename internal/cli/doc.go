// Package cli implements the command-line interface for event-ratings.
//
// The cli package provides the Cobra-based root command. It loads configuration,
// reads the URL list, runs the batch of fetch and extract tasks, ranks the events by
// rating, and writes the report as a table or JSON. Per-page failures never fail the
// command; only an unreadable URL list, invalid configuration or an output error do.
package cli
