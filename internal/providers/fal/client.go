// Package fal adapts the fal.ai request queue.
package fal

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
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	model      string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://queue.fal.run"
	}
	model := opts.Model
	if model == "" {
		model = "fal-ai/seedance/v1/pro"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
		model:      model,
	}
}

func (c *Client) ID() domain.ProviderID { return domain.ProviderFal }

type submitResponse struct {
	RequestID string `json:"request_id"`
}

type statusResponse struct {
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
}

type resultResponse struct {
	Video struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
	} `json:"video"`
	Thumbnail struct {
		URL string `json:"url"`
	} `json:"thumbnail"`
	Seed int64 `json:"seed"`
}

func (c *Client) Submit(ctx context.Context, req providers.SubmitRequest) (string, error) {
	if c.token == "" {
		return "", errors.New("fal: API key is missing")
	}
	path := "/" + c.model
	if req.CallbackURL != "" {
		path += "?fal_webhook=" + req.CallbackURL
	}
	var out submitResponse
	if err := c.do(ctx, http.MethodPost, path, req.Params, &out); err != nil {
		return "", err
	}
	if out.RequestID == "" {
		return "", fmt.Errorf("fal: submit returned no request id: %w", domain.ErrProviderFailure)
	}
	return out.RequestID, nil
}

func (c *Client) PollStatus(ctx context.Context, taskID string) (providers.StatusResult, error) {
	var out statusResponse
	path := fmt.Sprintf("/%s/requests/%s/status", c.model, taskID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return providers.StatusResult{}, err
	}
	status, err := MapStatus(out.Status)
	if err != nil {
		return providers.StatusResult{}, err
	}
	return providers.StatusResult{Status: status, QueuePosition: out.QueuePosition}, nil
}

func (c *Client) FetchResult(ctx context.Context, taskID string) (providers.Result, error) {
	var out resultResponse
	path := fmt.Sprintf("/%s/requests/%s", c.model, taskID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return providers.Result{}, err
	}
	if out.Video.URL == "" {
		return providers.Result{}, fmt.Errorf("fal: request %s has no video url: %w", taskID, domain.ErrProviderFailure)
	}
	mime := out.Video.ContentType
	if mime == "" {
		mime = "video/mp4"
	}
	return providers.Result{
		MediaURL:     out.Video.URL,
		ThumbnailURL: out.Thumbnail.URL,
		MIME:         mime,
		Metadata:     map[string]any{"seed": out.Seed},
	}, nil
}

// Cancel asks the queue to drop a pending request. Completed requests reject
// the cancel; that error is returned but callers swallow it.
func (c *Client) Cancel(ctx context.Context, taskID string) error {
	path := fmt.Sprintf("/%s/requests/%s/cancel", c.model, taskID)
	return c.do(ctx, http.MethodPut, path, nil, &struct{}{})
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
	req.Header.Set("Authorization", "Key "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fal: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fal: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ providers.Adapter = (*Client)(nil)
