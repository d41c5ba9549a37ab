package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

const (
	DefaultTitleSelector  = "h1"
	DefaultRatingSelector = ".en_grade_average"

	// RatingPattern matches rating summaries like "(4.5, 120 ratings)"
	RatingPattern = `\(([0-9.]+), ([0-9]+) ratings\)`
)

// Options selects the elements an Extractor reads
type Options struct {
	TitleSelector  string
	RatingSelector string
}

// Fields holds the values extracted from one event page
type Fields struct {
	Name        string
	Rating      float64
	ReviewCount int
}

// Extractor pulls event fields out of page markup.
// It is immutable after construction and safe for concurrent use.
type Extractor struct {
	title   cascadia.Selector
	rating  cascadia.Selector
	pattern *regexp.Regexp
}

// NewExtractor compiles the selectors and rating pattern once
func NewExtractor(opts Options) (*Extractor, error) {
	if opts.TitleSelector == "" {
		opts.TitleSelector = DefaultTitleSelector
	}
	if opts.RatingSelector == "" {
		opts.RatingSelector = DefaultRatingSelector
	}

	title, err := cascadia.Compile(opts.TitleSelector)
	if err != nil {
		return nil, fmt.Errorf("compiling title selector %q: %w", opts.TitleSelector, err)
	}
	rating, err := cascadia.Compile(opts.RatingSelector)
	if err != nil {
		return nil, fmt.Errorf("compiling rating selector %q: %w", opts.RatingSelector, err)
	}

	return &Extractor{
		title:   title,
		rating:  rating,
		pattern: regexp.MustCompile(RatingPattern),
	}, nil
}

// Extract parses body and returns the event's name, rating and review count.
// On any stage failure the returned Fields is the zero value.
func (e *Extractor) Extract(body string) (Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return e.ExtractDocument(doc)
}

// ExtractDocument runs the title, rating element and pattern stages on a parsed document
func (e *Extractor) ExtractDocument(doc *goquery.Document) (Fields, error) {
	name, err := e.Title(doc)
	if err != nil {
		return Fields{}, err
	}

	text, err := e.RatingText(doc)
	if err != nil {
		return Fields{}, err
	}

	rating, count, err := e.MatchRating(text)
	if err != nil {
		return Fields{}, err
	}

	return Fields{
		Name:        name,
		Rating:      rating,
		ReviewCount: count,
	}, nil
}

// Title returns the text of the first element matching the title selector
func (e *Extractor) Title(doc *goquery.Document) (string, error) {
	sel := doc.FindMatcher(e.title).First()
	if sel.Length() == 0 {
		return "", ErrNoTitle
	}
	return normalizeSpace(sel.Text()), nil
}

// RatingText returns the text of the first element matching the rating selector
func (e *Extractor) RatingText(doc *goquery.Document) (string, error) {
	sel := doc.FindMatcher(e.rating).First()
	if sel.Length() == 0 {
		return "", ErrNoRatingElement
	}
	return sel.Text(), nil
}

// MatchRating applies the rating pattern to text and parses both numbers
func (e *Extractor) MatchRating(text string) (float64, int, error) {
	matches := e.pattern.FindStringSubmatch(text)
	if matches == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrPatternMismatch, strings.TrimSpace(text))
	}

	rating, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: rating %q: %v", ErrMalformedNumber, matches[1], err)
	}
	count, err := strconv.Atoi(matches[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: review count %q: %v", ErrMalformedNumber, matches[2], err)
	}

	return rating, count, nil
}

// normalizeSpace collapses runs of whitespace, including newlines inside headings
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
