// Package agent is a thin client for a browser-agent gateway: a service
// that holds real browser sessions and executes natural-language
// instructions against them, optionally shaping the answer to a JSON
// schema.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// EnvKey must hold the gateway API key; without it no session can
	// be opened.
	EnvKey = "SPACEBOARD_AGENT_KEY"
	// EnvURL overrides the gateway address.
	EnvURL = "SPACEBOARD_AGENT_URL"

	defaultBaseURL = "http://127.0.0.1:8700"
	defaultTimeout = 5 * time.Minute
)

// ErrMissingKey reports that no API key was configured. It is raised
// before any network traffic happens.
var ErrMissingKey = errors.New("agent: " + EnvKey + " is not set")

// Config holds gateway connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each act round trip. Agent instructions routinely
	// take minutes, so this is generous by default.
	Timeout time.Duration
}

// ConfigFromEnv reads the gateway settings from the environment,
// falling back to a local gateway on the default port.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL: defaultBaseURL,
		APIKey:  os.Getenv(EnvKey),
		Timeout: defaultTimeout,
	}
	if url := os.Getenv(EnvURL); url != "" {
		cfg.BaseURL = url
	}
	return cfg
}

// ActResult is the gateway's answer to one instruction.
type ActResult struct {
	// Parsed is the structured payload, shaped by the request schema
	// when one was given. May be any JSON value, or absent.
	Parsed json.RawMessage `json:"parsed_response"`
	// MatchesSchema reports whether Parsed validated against the
	// requested schema.
	MatchesSchema bool `json:"matches_schema"`
	// Raw is the agent's unstructured text answer.
	Raw string `json:"raw_response"`
	// Error is non-empty when the agent executed but failed.
	Error string `json:"error"`
}

// Client talks to one gateway session.
type Client struct {
	http      *resty.Client
	sessionID string
}

// New builds a client. The API key is required; everything else has
// workable defaults.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "spaceboard/1.0")

	return &Client{http: http}, nil
}

// Start opens a browser session on the gateway at startPage.
func (c *Client) Start(ctx context.Context, startPage string, headless bool) error {
	var out struct {
		SessionID string `json:"session_id"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"start_page": startPage,
			"headless":   headless,
		}).
		SetResult(&out).
		Post("/v1/sessions")
	if err != nil {
		return fmt.Errorf("failed to start agent session: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to start agent session: %s: %s", resp.Status(), resp.String())
	}
	if out.SessionID == "" {
		return fmt.Errorf("agent session response carried no session id")
	}

	c.sessionID = out.SessionID
	return nil
}

// Act sends one instruction to the session. A non-nil schema asks the
// gateway to shape the answer accordingly. The returned result may
// itself carry an agent-level error.
func (c *Client) Act(ctx context.Context, instruction string, schema json.RawMessage) (*ActResult, error) {
	if c.sessionID == "" {
		return nil, fmt.Errorf("agent session not started")
	}

	body := map[string]any{"instruction": instruction}
	if len(schema) > 0 {
		body["schema"] = schema
	}

	var out ActResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/v1/sessions/" + c.sessionID + "/act")
	if err != nil {
		return nil, fmt.Errorf("act request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("act request failed: %s: %s", resp.Status(), resp.String())
	}

	return &out, nil
}

// End closes the session. Calling it on a never-started or already
// ended client is a no-op.
func (c *Client) End(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	sessionID := c.sessionID
	c.sessionID = ""

	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/v1/sessions/" + sessionID)
	if err != nil {
		return fmt.Errorf("failed to end agent session: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to end agent session: %s", resp.Status())
	}
	return nil
}
