package rickmorty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/foxzi/multiverse/internal/cache"
	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/metrics"
	"github.com/foxzi/multiverse/internal/query"
)

// DefaultBaseURL is the public character API
const DefaultBaseURL = "https://rickandmortyapi.com/api"

// maxBodySize bounds how much of a response is read
const maxBodySize = 4 << 20

// Options configures a Client
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	Cache             cache.Cache
	HTTPClient        *http.Client
}

// Client is a read-only character API client
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	group      singleflight.Group
}

type response struct {
	status int
	body   []byte
}

// NewClient creates a new character API client
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		cache:      opts.Cache,
	}
}

// PageURL returns the list endpoint URL for a FilterSet. Every non-empty
// filter is forwarded together with the page number.
func (c *Client) PageURL(f catalog.FilterSet) string {
	return c.baseURL + "/character/?" + query.Encode(f)
}

// FetchPage fetches one page of characters matching f.
// A 404 means no matches and yields an empty page with a nil error.
// Every other failure is returned as a *FetchError.
func (c *Client) FetchPage(ctx context.Context, f catalog.FilterSet) (catalog.PageResult, error) {
	f = f.Normalized()
	start := time.Now()

	resp, err := c.get(ctx, c.PageURL(f))
	if err != nil {
		metrics.ObserveUpstream(metrics.OutcomeError, time.Since(start).Seconds())
		return catalog.PageResult{}, err
	}

	if resp.status == http.StatusNotFound {
		metrics.ObserveUpstream(metrics.OutcomeEmpty, time.Since(start).Seconds())
		return catalog.EmptyPage(f.Page), nil
	}

	if err := checkStatus(resp); err != nil {
		metrics.ObserveUpstream(metrics.OutcomeError, time.Since(start).Seconds())
		return catalog.PageResult{}, err
	}

	var list ListResponse
	if err := json.Unmarshal(resp.body, &list); err != nil {
		metrics.ObserveUpstream(metrics.OutcomeError, time.Since(start).Seconds())
		return catalog.PageResult{}, &FetchError{
			StatusCode: resp.status,
			Message:    "The character list could not be read.",
			Err:        fmt.Errorf("%w: %v", ErrBadResponse, err),
		}
	}

	metrics.ObserveUpstream(metrics.OutcomeOK, time.Since(start).Seconds())
	return list.PageResult(f.Page), nil
}

// GetCharacter fetches a single character by id
func (c *Client) GetCharacter(ctx context.Context, id int) (*catalog.Character, error) {
	start := time.Now()

	resp, err := c.get(ctx, c.baseURL+"/character/"+strconv.Itoa(id))
	if err != nil {
		metrics.ObserveUpstream(metrics.OutcomeError, time.Since(start).Seconds())
		return nil, err
	}

	if resp.status == http.StatusNotFound {
		metrics.ObserveUpstream(metrics.OutcomeEmpty, time.Since(start).Seconds())
		return nil, fmt.Errorf("character %d: %w", id, ErrNotFound)
	}

	if err := checkStatus(resp); err != nil {
		metrics.ObserveUpstream(metrics.OutcomeError, time.Since(start).Seconds())
		return nil, err
	}

	var character catalog.Character
	if err := json.Unmarshal(resp.body, &character); err != nil {
		metrics.ObserveUpstream(metrics.OutcomeError, time.Since(start).Seconds())
		return nil, &FetchError{
			StatusCode: resp.status,
			Message:    "The character could not be read.",
			Err:        fmt.Errorf("%w: %v", ErrBadResponse, err),
		}
	}

	metrics.ObserveUpstream(metrics.OutcomeOK, time.Since(start).Seconds())
	return &character, nil
}

// get performs a GET, consulting the cache and collapsing concurrent
// requests for the same URL into one upstream call
func (c *Client) get(ctx context.Context, rawURL string) (*response, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(rawURL); ok {
			metrics.IncCacheLookup(true)
			return &response{status: http.StatusOK, body: body}, nil
		}
		metrics.IncCacheLookup(false)
	}

	ch := c.group.DoChan(rawURL, func() (any, error) {
		// Detached from any single caller so one cancelled request
		// does not fail the others sharing it
		return c.do(context.WithoutCancel(ctx), rawURL)
	})

	select {
	case <-ctx.Done():
		return nil, &FetchError{
			Message: "The request was cancelled.",
			Err:     ctx.Err(),
		}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*response), nil
	}
}

func (c *Client) do(ctx context.Context, rawURL string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{
			Message: "The character API is busy. Try again.",
			Err:     fmt.Errorf("%w: rate limit: %v", ErrUnavailable, err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{
			Message: "The request could not be built.",
			Err:     fmt.Errorf("create request: %w", err),
		}
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{
			Message: "The character API could not be reached.",
			Err:     fmt.Errorf("%w: %v", ErrUnavailable, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    "The response from the character API was interrupted.",
			Err:        fmt.Errorf("%w: read body: %v", ErrUnavailable, err),
		}
	}

	if resp.StatusCode == http.StatusOK && c.cache != nil && json.Valid(body) {
		_ = c.cache.Set(rawURL, body)
	}

	return &response{status: resp.StatusCode, body: body}, nil
}

// checkStatus turns a non-success status into a FetchError
func checkStatus(resp *response) error {
	if resp.status >= 200 && resp.status < 300 {
		return nil
	}

	msg := fmt.Sprintf("The character API answered with status %d.", resp.status)
	var errResp ErrorResponse
	if err := json.Unmarshal(resp.body, &errResp); err == nil && errResp.Error != "" {
		msg = fmt.Sprintf("The character API answered with an error: %s", errResp.Error)
	}

	return &FetchError{
		StatusCode: resp.status,
		Message:    msg,
		Err:        ErrUnavailable,
	}
}

// IsNotFound reports whether err means the requested character does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ParseID parses a character id from a path segment
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid character id %q", s)
	}
	return id, nil
}

// Endpoint returns the API host, for logging
func (c *Client) Endpoint() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	return u.Host
}
