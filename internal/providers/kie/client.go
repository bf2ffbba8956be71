// Package kie adapts the Kie.ai playground task queue.
package kie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
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
	token      string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.kie.ai/api/v1"
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
	}
}

func (c *Client) ID() domain.ProviderID { return domain.ProviderKie }

type createTaskRequest struct {
	Model       string          `json:"model"`
	Input       json.RawMessage `json:"input"`
	CallbackURL string          `json:"callBackUrl,omitempty"`
}

type createTaskResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

type recordInfoResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    struct {
		TaskID     string `json:"taskId"`
		State      string `json:"state"`
		FailMsg    string `json:"failMsg"`
		ResultJSON string `json:"resultJson"`
	} `json:"data"`
}

func modelFor(t domain.JobType) string {
	switch t {
	case domain.JobTypeOutfitSwap:
		return "kie/outfit-swap"
	default:
		return "kie/avatar-v2"
	}
}

func (c *Client) Submit(ctx context.Context, req providers.SubmitRequest) (string, error) {
	if c.token == "" {
		return "", errors.New("kie: API key is missing")
	}
	payload := createTaskRequest{
		Model:       modelFor(req.Type),
		Input:       req.Params,
		CallbackURL: req.CallbackURL,
	}
	var out createTaskResponse
	if err := c.do(ctx, http.MethodPost, "/playground/createTask", payload, &out); err != nil {
		return "", err
	}
	if out.Code != 200 || out.Data.TaskID == "" {
		return "", fmt.Errorf("kie: create task rejected: %s: %w", out.Message, domain.ErrProviderFailure)
	}
	return out.Data.TaskID, nil
}

func (c *Client) PollStatus(ctx context.Context, taskID string) (providers.StatusResult, error) {
	record, err := c.recordInfo(ctx, taskID)
	if err != nil {
		return providers.StatusResult{}, err
	}
	status, err := MapStatus(record.Data.State)
	if err != nil {
		return providers.StatusResult{}, err
	}
	return providers.StatusResult{Status: status, Detail: record.Data.FailMsg}, nil
}

func (c *Client) FetchResult(ctx context.Context, taskID string) (providers.Result, error) {
	record, err := c.recordInfo(ctx, taskID)
	if err != nil {
		return providers.Result{}, err
	}
	var result struct {
		ResultURLs []string `json:"resultUrls"`
	}
	if err := json.Unmarshal([]byte(record.Data.ResultJSON), &result); err != nil {
		return providers.Result{}, fmt.Errorf("kie: decode result: %w", err)
	}
	if len(result.ResultURLs) == 0 {
		return providers.Result{}, fmt.Errorf("kie: task %s has no result url: %w", taskID, domain.ErrProviderFailure)
	}
	return providers.Result{
		MediaURL: result.ResultURLs[0],
		MIME:     "image/png",
		Metadata: map[string]any{"result_urls": result.ResultURLs},
	}, nil
}

// Cancel is not supported by the playground API; callers treat it as
// best-effort anyway.
func (c *Client) Cancel(ctx context.Context, taskID string) error {
	return nil
}

func (c *Client) recordInfo(ctx context.Context, taskID string) (*recordInfoResponse, error) {
	endpoint := "/playground/recordInfo?taskId=" + url.QueryEscape(taskID)
	var out recordInfoResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	if out.Code != 200 {
		return nil, fmt.Errorf("kie: record info rejected: %s: %w", out.Message, domain.ErrProviderFailure)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kie: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("kie: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ providers.Adapter = (*Client)(nil)
