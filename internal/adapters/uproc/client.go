package uproc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
)

// Source identifies checks produced by this adapter
const Source = "uproc"

const maxErrorBody = 1024

type processRequest struct {
	Processor string            `json:"processor"`
	Params    map[string]string `json:"params"`
}

type processResponse struct {
	Result  bool `json:"result"`
	Message struct {
		Email string `json:"email"`
	} `json:"message"`
}

// Client is an implementation of the AddressVerifier interface using the uProc API
type Client struct {
	baseURL    string
	email      string
	apiKey     string
	processor  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new uProc client. Requests authenticate with the account
// email and API key over basic auth.
func NewClient(baseURL, email, apiKey, processor string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		apiKey:     apiKey,
		processor:  processor,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Verify runs the configured processor against an email address
func (c *Client) Verify(ctx context.Context, email string) (*core.AddressCheck, error) {
	body, err := json.Marshal(processRequest{
		Processor: c.processor,
		Params:    map[string]string{"email": email},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode uProc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build uProc request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call uProc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("uproc returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out processResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode uProc response: %w", err)
	}

	c.logger.Debug("uProc check received",
		zap.String("processor", c.processor),
		zap.Bool("result", out.Result))

	return &core.AddressCheck{
		Deliverable: out.Result,
		Address:     out.Message.Email,
		Source:      Source,
	}, nil
}
