package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
)

// ErrEmptyResponse is returned when the webhook answers with no verdict
var ErrEmptyResponse = errors.New("webhook returned no verdict")

// Client posts leads to the vetting webhook and reads back the verdict
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new webhook client
func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// VerifyLead posts the lead and returns the first verdict of the response array
func (c *Client) VerifyLead(ctx context.Context, lead *core.Lead) (*core.Verdict, error) {
	body, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var verdicts []core.Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdicts); err != nil {
		return nil, fmt.Errorf("failed to decode webhook response: %w", err)
	}
	if len(verdicts) == 0 {
		return nil, ErrEmptyResponse
	}

	c.logger.Debug("Webhook verdict received",
		zap.String("processing_id", resp.Header.Get("X-Processing-ID")),
		zap.String("result", string(verdicts[0].Result)))

	return &verdicts[0], nil
}
