package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/internal/domain/syncscore"
)

// HTTPClient wraps http.Client with the sync API calls.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// Sync posts one input and decodes the result.
func (c *HTTPClient) Sync(ctx context.Context, userID string, in model.Input) (Outcome, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to marshal request body: %w", err)
	}
	endpoint := c.baseURL + "/v1/users/" + url.PathEscape(userID) + "/sync"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("sync %s: %w", userID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Outcome{}, fmt.Errorf("%w: sync %s: %d %s", ErrUnexpectedStatus, userID, resp.StatusCode, bytes.TrimSpace(raw))
	}

	var res syncscore.SyncResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return Outcome{}, fmt.Errorf("decode sync result: %w", err)
	}
	return Outcome{
		UserID:     userID,
		AnalysisID: resp.Header.Get("X-Analysis-ID"),
		Cache:      resp.Header.Get("X-Cache"),
		Result:     res,
	}, nil
}
