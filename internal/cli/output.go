package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pfrederiksen/event-ratings/internal/batch"
	"github.com/pfrederiksen/event-ratings/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	RunID      string          `json:"run_id"`
	CheckedAt  time.Time       `json:"checked_at"`
	EventCount int             `json:"event_count"`
	Failed     int             `json:"failed"`
	Events     []*event.Event  `json:"events"`
	Failures   []FailureOutput `json:"failures,omitempty"`
}

// FailureOutput describes a page whose event kept default values
type FailureOutput struct {
	URL   string `json:"url"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

func failureOutputs(failures []batch.Failure) []FailureOutput {
	if len(failures) == 0 {
		return nil
	}
	out := make([]FailureOutput, 0, len(failures))
	for _, f := range failures {
		out = append(out, FailureOutput{
			URL:   f.URL,
			Stage: f.Stage,
			Error: f.Err.Error(),
		})
	}
	return out
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatTable:
		return writeTable(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	if result.Events == nil {
		result.Events = []*event.Event{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeTable outputs one row per event under an Event/Rating header
func writeTable(w io.Writer, result *OutputResult, verbose bool) error {
	headers := []string{"Event", "Rating"}
	if verbose {
		headers = append(headers, "Reviews")
	}

	rows := make([][]string, 0, len(result.Events))
	for _, evt := range result.Events {
		row := []string{evt.Name, FormatRating(evt.Rating)}
		if verbose {
			row = append(row, strconv.Itoa(evt.ReviewCount))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	if !verbose || len(result.Failures) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\nFailed: %d of %d\n", result.Failed, result.EventCount)
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  [%s] %s\n", f.Stage, f.URL)
		fmt.Fprintf(w, "       %s\n", f.Error)
	}

	return nil
}

// FormatRating renders a rating as the shortest exact decimal, e.g. "4.5" or "0"
func FormatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}
