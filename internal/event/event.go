package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// Event represents a single conference session page and its audience rating
type Event struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// GenerateID creates a deterministic ID for an event based on its URL
func GenerateID(url string) string {
	h := sha1.New()
	h.Write([]byte(strings.TrimSpace(url)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NewEvent creates an Event for url with default name, rating and review count
func NewEvent(url string) *Event {
	return &Event{
		ID:  GenerateID(url),
		URL: url,
	}
}

// NewEvents creates one Event per URL, preserving order
func NewEvents(urls []string) []*Event {
	events := make([]*Event, 0, len(urls))
	for _, u := range urls {
		events = append(events, NewEvent(u))
	}
	return events
}

// Populate commits extracted values to the event in a single step
func (e *Event) Populate(name string, rating float64, reviewCount int) {
	e.Name = name
	e.Rating = rating
	e.ReviewCount = reviewCount
}
