package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lox/climatefuture/internal/httputil"
	"github.com/lox/climatefuture/internal/metrics"
	"github.com/lox/climatefuture/internal/models"
)

const defaultBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

// Client resolves free-text addresses against the Open-Meteo geocoding API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client:  httputil.NewClient(),
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Admin1    string  `json:"admin1"`
	Country   string  `json:"country"`
}

// displayName joins the place name with its region and country, skipping
// blanks and duplicates.
func (r searchResult) displayName() string {
	name := r.Name
	if r.Admin1 != "" && r.Admin1 != r.Name {
		name += ", " + r.Admin1
	}
	if r.Country != "" {
		name += ", " + r.Country
	}
	return name
}

// Lookup resolves an address to coordinates and a canonical place name.
// A nil location with a nil error means the API found no match; that is an
// expected result, not a failure.
func (c *Client) Lookup(ctx context.Context, address string) (*models.Location, error) {
	u := fmt.Sprintf("%s?name=%s&count=1", c.baseURL, url.QueryEscape(address))

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("geocode: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("geocode: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("geocode: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		metrics.GeocodeCallsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var data searchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		metrics.GeocodeCallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if len(data.Results) == 0 {
		metrics.GeocodeCallsTotal.WithLabelValues("no_match").Inc()
		return nil, nil
	}

	metrics.GeocodeCallsTotal.WithLabelValues("ok").Inc()
	r := data.Results[0]
	return &models.Location{
		Name:      r.displayName(),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, nil
}
