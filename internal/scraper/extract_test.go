package scraper

import (
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(Options{})
	require.NoError(t, err)
	return e
}

func parseFragment(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    Fields
		wantErr error
	}{
		{
			name: "title and rating",
			html: `<h1>Talk One</h1><div class="en_grade_average">(4.5, 120 ratings)</div>`,
			want: Fields{Name: "Talk One", Rating: 4.5, ReviewCount: 120},
		},
		{
			name: "integer rating",
			html: `<h1>Talk Two</h1><span class="en_grade_average">Average (4, 7 ratings)</span>`,
			want: Fields{Name: "Talk Two", Rating: 4, ReviewCount: 7},
		},
		{
			name: "HTML entities decoded in title",
			html: `<h1>Go &amp; Rust</h1><span class="en_grade_average">(3.25, 4 ratings)</span>`,
			want: Fields{Name: "Go & Rust", Rating: 3.25, ReviewCount: 4},
		},
		{
			name: "nested markup in rating element",
			html: `<h1>Talk</h1><div class="en_grade_average"><b>4.9</b> <i>(4.9, 1 ratings)</i></div>`,
			want: Fields{Name: "Talk", Rating: 4.9, ReviewCount: 1},
		},
		{
			name:    "no title element",
			html:    `<h2>Talk</h2><span class="en_grade_average">(4.5, 120 ratings)</span>`,
			wantErr: ErrNoTitle,
		},
		{
			name:    "no rating element",
			html:    `<h1>Talk</h1><p>No ratings yet</p>`,
			wantErr: ErrNoRatingElement,
		},
		{
			name:    "pattern mismatch",
			html:    `<h1>Talk</h1><span class="en_grade_average">No ratings yet</span>`,
			wantErr: ErrPatternMismatch,
		},
		{
			name:    "singular rating wording does not match",
			html:    `<h1>Talk</h1><span class="en_grade_average">(5.0, 1 rating)</span>`,
			wantErr: ErrPatternMismatch,
		},
		{
			name:    "malformed rating numeral",
			html:    `<h1>Talk</h1><span class="en_grade_average">(4.5.1, 12 ratings)</span>`,
			wantErr: ErrMalformedNumber,
		},
		{
			name:    "review count overflow",
			html:    `<h1>Talk</h1><span class="en_grade_average">(4.5, 99999999999999999999999 ratings)</span>`,
			wantErr: ErrMalformedNumber,
		},
		{
			name:    "empty document",
			html:    ``,
			wantErr: ErrNoTitle,
		},
	}

	e := newTestExtractor(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(tt.html)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Fields{}, got, "failed extraction must return zero Fields")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := newTestExtractor(t)
	html := `<h1>Talk One</h1><div class="en_grade_average">(4.5, 120 ratings)</div>`

	first, err1 := e.Extract(html)
	second, err2 := e.Extract(html)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestExtract_Fixtures(t *testing.T) {
	tests := []struct {
		file    string
		want    Fields
		wantErr error
	}{
		{
			file: "session_rated.html",
			want: Fields{Name: "Talk One", Rating: 4.5, ReviewCount: 120},
		},
		{
			file:    "session_unrated.html",
			wantErr: ErrNoRatingElement,
		},
		{
			file:    "session_no_title.html",
			wantErr: ErrNoTitle,
		},
	}

	e := newTestExtractor(t)

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := os.ReadFile("../../testdata/fixtures/" + tt.file)
			require.NoError(t, err, "failed to load test fixture")

			got, err := e.Extract(string(data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		wantErr error
	}{
		{"single heading", `<h1>Talk One</h1>`, "Talk One", nil},
		{"first heading wins", `<h1>First</h1><h1>Second</h1>`, "First", nil},
		{"whitespace collapsed", "<h1>\n  Scaling\n   Go  </h1>", "Scaling Go", nil},
		{"empty heading still matches", `<h1></h1>`, "", nil},
		{"missing heading", `<p>nothing</p>`, "", ErrNoTitle},
	}

	e := newTestExtractor(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Title(parseFragment(t, tt.html))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatingText(t *testing.T) {
	e := newTestExtractor(t)

	text, err := e.RatingText(parseFragment(t, `<div class="en_grade_average">(4.5, 120 ratings)</div><div class="en_grade_average">(1.0, 2 ratings)</div>`))
	require.NoError(t, err)
	assert.Equal(t, "(4.5, 120 ratings)", text)

	_, err = e.RatingText(parseFragment(t, `<div class="grade">(4.5, 120 ratings)</div>`))
	assert.ErrorIs(t, err, ErrNoRatingElement)
}

func TestMatchRating(t *testing.T) {
	tests := []struct {
		text       string
		wantRating float64
		wantCount  int
		wantErr    error
	}{
		{"(4.5, 120 ratings)", 4.5, 120, nil},
		{"Average: (3.75, 8 ratings) from attendees", 3.75, 8, nil},
		{"(0, 0 ratings)", 0, 0, nil},
		{"(.5, 3 ratings)", 0.5, 3, nil},
		{"4.5, 120 ratings", 0, 0, ErrPatternMismatch},
		{"(4.5,120 ratings)", 0, 0, ErrPatternMismatch},
		{"(-4.5, 120 ratings)", 0, 0, ErrPatternMismatch},
		{"", 0, 0, ErrPatternMismatch},
		{"(., 3 ratings)", 0, 0, ErrMalformedNumber},
	}

	e := newTestExtractor(t)

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			rating, count, err := e.MatchRating(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, rating)
				assert.Zero(t, count)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRating, rating)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestNewExtractor_Selectors(t *testing.T) {
	e, err := NewExtractor(Options{
		TitleSelector:  "h2.session-title",
		RatingSelector: "#score",
	})
	require.NoError(t, err)

	got, err := e.Extract(`<h1>Site</h1><h2 class="session-title">Custom</h2><p id="score">(2.5, 10 ratings)</p>`)
	require.NoError(t, err)
	assert.Equal(t, Fields{Name: "Custom", Rating: 2.5, ReviewCount: 10}, got)

	_, err = NewExtractor(Options{TitleSelector: "h1[", RatingSelector: DefaultRatingSelector})
	assert.Error(t, err)

	_, err = NewExtractor(Options{RatingSelector: "div["})
	assert.Error(t, err)
}
