package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

const clientTimeout = 10 * time.Second

// Client calls the HTTP API of a running daemon.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon listening on addr. addr is a
// listen address (":8080", "host:8080") or a base URL.
func NewClient(addr string) *Client {
	base := strings.TrimRight(addr, "/")
	switch {
	case strings.HasPrefix(base, "http://"), strings.HasPrefix(base, "https://"):
	case strings.HasPrefix(base, ":"):
		base = "http://localhost" + base
	default:
		base = "http://" + base
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: clientTimeout},
	}
}

// BaseURL returns the URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StartRun asks the daemon to start a cycle and returns its handle.
// A busy daemon yields an error wrapping domain.ErrBusy that names the
// active handle.
func (c *Client) StartRun(ctx context.Context) (domain.RunHandle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/runs", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("contact daemon at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		var body runResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		return domain.RunHandle(body.Handle), nil
	case http.StatusConflict:
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return domain.RunHandle(body.Handle), fmt.Errorf("%w (%s)", domain.ErrBusy, body.Handle)
	default:
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = resp.Status
		}
		return "", fmt.Errorf("daemon: %s", body.Error)
	}
}
