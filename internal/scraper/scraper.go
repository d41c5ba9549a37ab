package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
)

const (
	UserAgent = "event-ratings-cli/1.0 (github.com/pfrederiksen/event-ratings)"
	Timeout   = 30 * time.Second
	RetryWait = 250 * time.Millisecond
)

// AttemptObserver is notified after every HTTP attempt, including retries
type AttemptObserver interface {
	ObserveFetch(err error, duration time.Duration)
}

// Config controls how event pages are retrieved
type Config struct {
	UserAgent  string
	Timeout    time.Duration // per request; 0 disables the timeout
	MaxRetries int           // additional attempts after the first; 0 means a single attempt
	RetryWait  time.Duration // initial backoff interval
	Observer   AttemptObserver
}

// DefaultConfig returns the reference fetch policy: one attempt with a 30s timeout
func DefaultConfig() Config {
	return Config{
		UserAgent: UserAgent,
		Timeout:   Timeout,
		RetryWait: RetryWait,
	}
}

// Scraper handles fetching event pages
type Scraper struct {
	client *http.Client
	cfg    Config
}

// New creates a new Scraper instance
func New(cfg Config) *Scraper {
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = RetryWait
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg: cfg,
	}
}

// Fetch retrieves the full body of the page at url.
// Every failure is returned as a *TransportError.
func (s *Scraper) Fetch(ctx context.Context, url string) (string, error) {
	var body string

	operation := func() error {
		start := time.Now()
		b, err := s.fetchOnce(ctx, url)
		if s.cfg.Observer != nil {
			s.cfg.Observer.ObserveFetch(err, time.Since(start))
		}
		if err != nil {
			var transportErr *TransportError
			if errors.As(err, &transportErr) && !transportErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	if err := backoff.Retry(operation, s.newBackOff(ctx)); err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return "", transportErr
		}
		return "", &TransportError{URL: url, Err: err}
	}

	return body, nil
}

func (s *Scraper) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.RetryWait
	exp.MaxInterval = 20 * s.cfg.RetryWait
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.cfg.MaxRetries)), ctx)
}

func (s *Scraper) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", &TransportError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &TransportError{URL: url, Err: fmt.Errorf("fetching page: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if !utf8.Valid(data) {
		return "", &TransportError{URL: url, Err: ErrInvalidEncoding}
	}

	return string(data), nil
}
