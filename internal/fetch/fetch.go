package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
)

// Page is one successfully fetched and parsed document.
type Page struct {
	URL    string
	Status int
	Doc    *goquery.Document
}

// Error is a fetch that did not produce a usable page. Status is the last
// HTTP status seen (0 for transport errors), Attempts how many requests
// were spent on it.
type Error struct {
	URL      string
	Status   int
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v (status %d, attempts %d)", e.URL, e.Err, e.Status, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: status %d after %d attempts", e.URL, e.Status, e.Attempts)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether a status is worth retrying. Transport errors
// (status 0) and server-side failures are; 4xx other than 429 are not.
func Transient(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

// Config for a Client. Zero values get sane defaults.
type Config struct {
	Backend     Backend
	Timeout     time.Duration
	Retries     int // retry budget on top of the first attempt
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Limiter     *HostLimiter
	HTTPClient  *http.Client // tests inject one
}

// Client fetches pages through one backend with retries, exponential
// backoff, and per-host rate limiting.
type Client struct {
	backend Backend
	hc      *http.Client
	retries int
	base    time.Duration
	max     time.Duration
	limiter *HostLimiter
}

func New(cfg Config) *Client {
	backend := cfg.Backend
	if backend == nil {
		backend = Direct{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	base := cfg.BaseBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	max := cfg.MaxBackoff
	if max <= 0 {
		max = 8 * time.Second
	}
	return &Client{
		backend: backend,
		hc:      hc,
		retries: cfg.Retries,
		base:    base,
		max:     max,
		limiter: cfg.Limiter,
	}
}

// Fetch GETs target and parses the body. Transient failures (transport
// errors, 429, 5xx) are retried up to the budget with capped exponential
// backoff; any other non-2xx status fails immediately.
func (c *Client) Fetch(ctx context.Context, target string) (*Page, error) {
	attempts := 0
	lastStatus := 0
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffFor(attempt - 1)
			log.Debug("retrying fetch", "url", target, "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, &Error{URL: target, Status: lastStatus, Attempts: attempts, Err: ctx.Err()}
			}
		}

		req, err := c.backend.BuildRequest(ctx, target)
		if err != nil {
			return nil, &Error{URL: target, Attempts: attempts, Err: err}
		}

		if c.limiter != nil {
			if err := c.limiter.WaitURL(ctx, req.URL.String()); err != nil {
				return nil, &Error{URL: target, Status: lastStatus, Attempts: attempts, Err: err}
			}
		}

		attempts++
		resp, err := c.hc.Do(req)
		if err != nil {
			lastStatus = 0
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			doc, perr := goquery.NewDocumentFromReader(resp.Body)
			resp.Body.Close()
			if perr != nil {
				return nil, &Error{URL: target, Status: resp.StatusCode, Attempts: attempts, Err: perr}
			}
			return &Page{URL: target, Status: resp.StatusCode, Doc: doc}, nil
		}

		resp.Body.Close()
		lastStatus = resp.StatusCode
		lastErr = fmt.Errorf("status %d", resp.StatusCode)

		if !Transient(resp.StatusCode) {
			return nil, &Error{URL: target, Status: resp.StatusCode, Attempts: attempts, Err: lastErr}
		}
	}

	return nil, &Error{URL: target, Status: lastStatus, Attempts: attempts, Err: lastErr}
}

func (c *Client) backoffFor(attempt int) time.Duration {
	d := c.base << uint(attempt)
	if d > c.max || d <= 0 {
		d = c.max
	}
	return d
}
