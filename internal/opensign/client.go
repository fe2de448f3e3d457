// Package opensign implements the client for the external signing provider's
// create-template API.
package opensign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Client defines the provider operations the workflow engine depends on.
type Client interface {
	// CreateTemplate submits a document for role-ordered signing. Success is
	// strictly defined as a response carrying a non-empty ObjectID; a 2xx
	// response without one yields ErrMalformedResponse.
	CreateTemplate(ctx context.Context, req TemplateRequest) (*TemplateResponse, error)
}

type client struct {
	http   *http.Client
	url    string
	apiKey string
	logger *slog.Logger
}

// New creates a provider client from the given configuration. The underlying
// HTTP client enforces the configured request timeout (30s by default), so a
// stalled provider cannot hold a submission open indefinitely.
func New(cfg *Config, logger *slog.Logger) Client {
	return &client{
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		url:    cfg.APIURL,
		apiKey: cfg.APIKey,
		logger: logger.With("system", "opensign"),
	}
}

func (c *client) CreateTemplate(ctx context.Context, req TemplateRequest) (*TemplateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal template request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build template request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-token", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call signing provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.decodeError(resp)
	}

	var tmpl TemplateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("decode template response: %w", err)
	}

	if tmpl.ObjectID == "" {
		return nil, ErrMalformedResponse
	}

	c.logger.Info("template created", "template_id", tmpl.ObjectID)
	return &tmpl, nil
}

// decodeError extracts the provider's failure message when one is present.
// Provider error bodies are best-effort JSON; anything unparseable degrades to
// a status-only APIError.
func (c *client) decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}

	c.logger.Error("provider rejected request", "status", apiErr.Status, "message", apiErr.Message)
	return apiErr
}
