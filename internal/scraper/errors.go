package scraper

import (
	"errors"
	"fmt"
)

// Extraction failures, one per stage
var (
	ErrParse           = errors.New("parsing HTML")
	ErrNoTitle         = errors.New("no title element")
	ErrNoRatingElement = errors.New("no rating element")
	ErrPatternMismatch = errors.New("rating text does not match pattern")
	ErrMalformedNumber = errors.New("malformed rating numeral")
)

// ErrInvalidEncoding is returned when a response body is not valid UTF-8
var ErrInvalidEncoding = errors.New("response body is not valid UTF-8")

// Stage names used in logs, metrics and run summaries
const (
	StageFetch         = "fetch"
	StageParse         = "parse"
	StageTitle         = "title"
	StageRatingElement = "rating_element"
	StagePattern       = "pattern"
	StageNumeral       = "numeral"
	StageUnknown       = "unknown"
)

// TransportError describes a failed retrieval of an event page
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could succeed.
// Client errors other than 429 are permanent.
func (e *TransportError) Retryable() bool {
	if errors.Is(e.Err, ErrInvalidEncoding) {
		return false
	}
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == 429:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// Stage maps an error returned by Fetch or Extract to the pipeline stage that produced it
func Stage(err error) string {
	var transportErr *TransportError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return StageFetch
	case errors.Is(err, ErrParse):
		return StageParse
	case errors.Is(err, ErrNoTitle):
		return StageTitle
	case errors.Is(err, ErrNoRatingElement):
		return StageRatingElement
	case errors.Is(err, ErrPatternMismatch):
		return StagePattern
	case errors.Is(err, ErrMalformedNumber):
		return StageNumeral
	default:
		return StageUnknown
	}
}
