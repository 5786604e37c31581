package streetview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// TileAPIURL is the Street View panorama tile endpoint
	TileAPIURL = "https://streetviewpixels-pa.googleapis.com/v1/tile"

	// ThumbnailAPIURL is the hidden thumbnail endpoint used for URL views
	ThumbnailAPIURL = "https://geo0.ggpht.com/cbk"

	// ClientID identifies this client to the endpoints
	ClientID = "maps_sv.tactile"

	// User agent
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Default client tuning, used for zero-valued ClientConfig fields
const (
	DefaultMaxRetries = 2
	DefaultRetryDelay = time.Second
	DefaultTimeout    = 30 * time.Second

	// One warm connection per concurrent fetch batch
	maxIdleConnsPerHost = 8
)

// ClientConfig tunes a Client. The zero value takes the documented
// defaults; tests point the URLs at local servers and shrink the delay.
type ClientConfig struct {
	// TileURL overrides the tile endpoint.
	TileURL string
	// ThumbnailURL overrides the thumbnail endpoint.
	ThumbnailURL string
	// MaxRetries is the number of retries after the first attempt
	// (default 2, so three attempts total). Negative disables retries.
	MaxRetries int
	// RetryDelay is the pause between attempts (default 1s).
	RetryDelay time.Duration
	// Timeout bounds each HTTP request (default 30s).
	Timeout time.Duration
}

// Client handles communication with the Street View tile and thumbnail
// endpoints, with retry and system proxy support. One Client is shared by
// all concurrent fetches; its transport pools a connection per batch.
type Client struct {
	httpClient   *http.Client
	tileURL      string
	thumbnailURL string
	maxRetries   int
	retryDelay   time.Duration
}

// NewClient creates a Client from cfg, filling in defaults for zero fields.
func NewClient(cfg ClientConfig) *Client {
	if cfg.TileURL == "" {
		cfg.TileURL = TileAPIURL
	}
	if cfg.ThumbnailURL == "" {
		cfg.ThumbnailURL = ThumbnailAPIURL
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	} else if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Use http.ProxyFromEnvironment to respect system proxy settings
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		tileURL:      cfg.TileURL,
		thumbnailURL: cfg.ThumbnailURL,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
	}
}

// FetchTile downloads one tile of a panorama at the given zoom level.
// A 400 response is surfaced immediately; other failures are retried
// until the budget runs out, and the final error carries the last cause.
// ctx is polled before every attempt and during the retry pause, so a
// cancelled context stops the loop without issuing further requests.
func (c *Client) FetchTile(ctx context.Context, panoramaID string, coord Coordinate, zoom int) ([]byte, error) {
	params := url.Values{
		"cb_client": {ClientID},
		"panoid":    {panoramaID},
		"x":         {strconv.Itoa(coord.X)},
		"y":         {strconv.Itoa(coord.Y)},
		"zoom":      {strconv.Itoa(zoom)},
	}
	data, err := c.fetchWithRetry(ctx, c.tileURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tile %v: %w", coord, err)
	}
	return data, nil
}

// fetchWithRetry issues GET requests against endpoint until one succeeds,
// a terminal status arrives, or the retry budget is spent.
func (c *Client) fetchWithRetry(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	retries := c.maxRetries
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := c.fetchOnce(ctx, endpoint, params)
		if err == nil {
			return data, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Terminal() {
			return nil, err
		}
		if retries == 0 {
			return nil, err
		}
		retries--

		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}
