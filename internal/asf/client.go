// Package asf provides a minimal client for the ASF Search API, used to look
// up orbital metadata (path number, flight direction, acquisition time) for
// the granules behind HyP3 jobs.
package asf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client handles communication with the ASF Search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new ASF API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger for the client.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// GranuleDetails looks up the named granules and returns their orbital
// metadata keyed by scene name. Granules unknown to ASF are simply absent
// from the result; the caller decides whether that is an error.
func (c *Client) GranuleDetails(ctx context.Context, names []string) (map[string]Granule, error) {
	if len(names) == 0 {
		return map[string]Granule{}, nil
	}

	searchURL, err := c.buildSearchURL(searchParams{GranuleList: names, Output: "geojson"})
	if err != nil {
		return nil, fmt.Errorf("failed to build search URL: %w", err)
	}

	c.logger.DebugContext(ctx, "executing ASF granule lookup",
		slog.Int("granule_count", len(names)),
		slog.String("url", searchURL),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hyp3-prep/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "ASF API request failed",
			slog.String("error", err.Error()),
			slog.String("url", searchURL),
		)
		return nil, fmt.Errorf("ASF API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "ASF API returned non-200 status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)),
		)
		return nil, fmt.Errorf("ASF API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result geoJSONResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ASF response: %w", err)
	}

	granules := make(map[string]Granule, len(result.Features))
	for _, f := range result.Features {
		props := f.Properties
		if props.SceneName == "" {
			continue
		}
		// ASF returns one feature per product; the orbital metadata is
		// identical across products of a scene, so last-one-wins is fine.
		g := Granule{
			Name:            props.SceneName,
			Platform:        props.Platform,
			FlightDirection: props.FlightDirection,
		}
		if props.PathNumber != nil {
			g.PathNumber = *props.PathNumber
		}
		if props.StartTime != "" {
			t, err := parseASFTime(props.StartTime)
			if err != nil {
				return nil, fmt.Errorf("granule %s: %w", props.SceneName, err)
			}
			g.StartTime = t
		}
		granules[props.SceneName] = g
	}

	c.logger.DebugContext(ctx, "ASF granule lookup completed",
		slog.Int("requested", len(names)),
		slog.Int("resolved", len(granules)),
	)

	return granules, nil
}

// buildSearchURL constructs the full search URL with query parameters.
func (c *Client) buildSearchURL(params searchParams) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	base.Path = "/services/search/param"
	base.RawQuery = params.toQueryString()

	return base.String(), nil
}
