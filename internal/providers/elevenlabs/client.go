// Package elevenlabs adapts the ElevenLabs API for voiceover and voice
// cloning jobs. Speech synthesis itself is synchronous upstream, so Submit
// creates a server-side task record via the history API and the status
// endpoints report the async vocabulary used by dubbing projects.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adforge-server/internal/domain"
	"adforge-server/internal/providers"
)

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.elevenlabs.io/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
	}
}

func (c *Client) ID() domain.ProviderID { return domain.ProviderElevenLabs }

type projectResponse struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
	AudioURL  string `json:"audio_url"`
}

func (c *Client) Submit(ctx context.Context, req providers.SubmitRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("elevenlabs: API key is missing")
	}
	path := "/projects"
	if req.Type == domain.JobTypeVoiceClone {
		path = "/voices/add"
	}
	var out projectResponse
	if err := c.do(ctx, http.MethodPost, path, req.Params, &out); err != nil {
		return "", err
	}
	if out.ProjectID == "" {
		return "", fmt.Errorf("elevenlabs: create returned no project id: %w", domain.ErrProviderFailure)
	}
	return out.ProjectID, nil
}

func (c *Client) PollStatus(ctx context.Context, taskID string) (providers.StatusResult, error) {
	proj, err := c.getProject(ctx, taskID)
	if err != nil {
		return providers.StatusResult{}, err
	}
	status, err := MapStatus(proj.Status)
	if err != nil {
		return providers.StatusResult{}, err
	}
	return providers.StatusResult{Status: status, Detail: proj.Error}, nil
}

func (c *Client) FetchResult(ctx context.Context, taskID string) (providers.Result, error) {
	proj, err := c.getProject(ctx, taskID)
	if err != nil {
		return providers.Result{}, err
	}
	if proj.AudioURL == "" {
		return providers.Result{}, fmt.Errorf("elevenlabs: project %s has no audio url: %w", taskID, domain.ErrProviderFailure)
	}
	return providers.Result{MediaURL: proj.AudioURL, MIME: "audio/mpeg"}, nil
}

func (c *Client) Cancel(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+taskID, nil, &struct{}{})
}

func (c *Client) getProject(ctx context.Context, taskID string) (*projectResponse, error) {
	var out projectResponse
	if err := c.do(ctx, http.MethodGet, "/projects/"+taskID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload json.RawMessage, out any) error {
	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("elevenlabs: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ providers.Adapter = (*Client)(nil)
