package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
)

// Source identifies assessments produced by this adapter
const Source = "hunter"

// maxErrorBody bounds how much of an error response is read into the error message
const maxErrorBody = 1024

// verifierResponse is the body of Hunter's email-verifier endpoint
type verifierResponse struct {
	Data struct {
		Email      string `json:"email"`
		Status     string `json:"status"`
		Score      int    `json:"score"`
		Disposable bool   `json:"disposable"`
		Webmail    bool   `json:"webmail"`
	} `json:"data"`
}

// Client is an implementation of the EmailAssessor interface using the Hunter API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Hunter client
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Assess looks up the domain type and quality score of an email address
func (c *Client) Assess(ctx context.Context, email string) (*core.EmailAssessment, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/email-verifier?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build Hunter request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Hunter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("hunter returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out verifierResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode Hunter response: %w", err)
	}

	c.logger.Debug("Hunter verification received",
		zap.String("status", out.Data.Status),
		zap.Int("score", out.Data.Score))

	return &core.EmailAssessment{
		Disposable: out.Data.Disposable,
		Webmail:    out.Data.Webmail,
		Score:      out.Data.Score,
		Source:     Source,
	}, nil
}
