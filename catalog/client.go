package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/waldirborbajr/appstorecheck/logger"
)

const (
	DefaultBaseURL   = "https://itunes.apple.com/lookup"
	defaultUserAgent = "appstorecheck"
	maxBodyBytes     = 4 << 20
)

// Client queries the catalog lookup endpoint
type Client struct {
	baseURL    string
	country    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the lookup endpoint, mostly for tests
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if strings.TrimSpace(u) != "" {
			c.baseURL = strings.TrimSpace(u)
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCountry restricts the lookup to a storefront, e.g. "us"
func WithCountry(country string) Option {
	return func(c *Client) {
		c.country = strings.ToLower(strings.TrimSpace(country))
	}
}

// NewClient returns a Client for the public iTunes lookup endpoint
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupURL builds the lookup request URL for appID
func (c *Client) LookupURL(appID string) (string, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return "", fetchErr(ErrInvalidURL, fmt.Errorf("empty app id"))
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fetchErr(ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fetchErr(ErrInvalidURL, fmt.Errorf("base url %q is not absolute", c.baseURL))
	}

	q := u.Query()
	q.Set("id", appID)
	if c.country != "" {
		q.Set("country", c.country)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch performs a single lookup for appID and returns the first result.
// Errors are *FetchError values; match them with errors.Is against the Err* kinds.
func (c *Client) Fetch(ctx context.Context, appID string) (Record, error) {
	log := logger.GetLogger()

	lookupURL, err := c.LookupURL(appID)
	if err != nil {
		return Record{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return Record{}, fetchErr(ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, fetchErr(ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Record{}, fetchErr(ErrTransport, fmt.Errorf("reading response: %w", err))
	}

	log.Debug().
		Str("url", lookupURL).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("Lookup response received")

	if len(body) == 0 {
		return Record{}, fetchErr(ErrEmptyBody, nil)
	}

	return parseLookup(body)
}

// parseLookup extracts results[0] from a lookup payload. Missing or non-string fields become "".
func parseLookup(body []byte) (Record, error) {
	var payload struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Record{}, fetchErr(ErrMalformedResponse, err)
	}
	if len(payload.Results) == 0 {
		return Record{}, fetchErr(ErrMalformedResponse, fmt.Errorf("no results"))
	}

	var entry map[string]any
	if err := json.Unmarshal(payload.Results[0], &entry); err != nil || entry == nil {
		return Record{}, fetchErr(ErrMalformedResponse, fmt.Errorf("first result is not an object"))
	}

	return Record{
		BundleID:                  stringField(entry, "bundleId"),
		Version:                   stringField(entry, "version"),
		ReleaseNotes:              stringField(entry, "releaseNotes"),
		CurrentVersionReleaseDate: stringField(entry, "currentVersionReleaseDate"),
	}, nil
}

func stringField(m map[string]any, key string) string {
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	return s
}
