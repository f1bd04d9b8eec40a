// Package hyp3 provides a client for the ASF HyP3 processing API: listing
// the jobs of a named subscription, filtering them, and downloading their
// result archives.
package hyp3

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Client handles communication with the HyP3 API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger

	// progress disables the download progress bar when false (tests, CI).
	progress bool
}

// NewClient creates a new HyP3 API client. token is an Earthdata bearer
// token; pass "" for endpoints that do not require one.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:   slog.Default(),
		progress: true,
	}
}

// WithLogger sets a custom logger for the client.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// WithProgress toggles the download progress bar.
func (c *Client) WithProgress(enabled bool) *Client {
	c.progress = enabled
	return c
}

// ListJobs returns every job belonging to the named subscription, following
// the API's next-page links.
func (c *Client) ListJobs(ctx context.Context, name string) ([]Job, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	base.Path = "/jobs"
	base.RawQuery = url.Values{"name": []string{name}}.Encode()
	next := base.String()

	var jobs []Job
	for next != "" {
		c.logger.DebugContext(ctx, "listing HyP3 jobs", slog.String("url", next))

		page, err := c.fetchJobsPage(ctx, next)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, page.Jobs...)
		next = page.Next
	}

	c.logger.DebugContext(ctx, "HyP3 job listing completed",
		slog.String("subscription", name),
		slog.Int("job_count", len(jobs)),
	)
	return jobs, nil
}

func (c *Client) fetchJobsPage(ctx context.Context, pageURL string) (*jobsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hyp3-prep/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "HyP3 API request failed",
			slog.String("error", err.Error()),
			slog.String("url", pageURL),
		)
		return nil, fmt.Errorf("HyP3 API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "HyP3 API returned non-200 status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)),
		)
		return nil, fmt.Errorf("HyP3 API returned status %d: %s", resp.StatusCode, string(body))
	}

	var page jobsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode HyP3 response: %w", err)
	}
	return &page, nil
}

// Download fetches one result archive into destDir and returns its path. The
// archive is written to a .part file and renamed once complete, so a partial
// download never looks like a finished one.
func (c *Client) Download(ctx context.Context, file JobFile, destDir string) (string, error) {
	dest := filepath.Join(destDir, file.Filename)
	part := dest + ".part"

	c.logger.InfoContext(ctx, "downloading result archive",
		slog.String("filename", file.Filename),
		slog.Int64("size", file.Size),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "hyp3-prep/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download of %s failed: %w", file.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s returned status %d", file.Filename, resp.StatusCode)
	}

	out, err := os.Create(part)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", part, err)
	}

	var w io.Writer = out
	if c.progress {
		bar := progressbar.DefaultBytes(file.Size, file.Filename)
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		out.Close()
		os.Remove(part)
		return "", fmt.Errorf("download of %s failed: %w", file.Filename, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(part)
		return "", fmt.Errorf("failed to finish %s: %w", part, err)
	}
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return "", fmt.Errorf("failed to commit %s: %w", dest, err)
	}

	return dest, nil
}
