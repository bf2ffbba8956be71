// Package byteplus adapts the BytePlus ModelArk content generation tasks API.
package byteplus

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
		base = "https://ark.ap-southeast.bytepluses.com/api/v3"
	}
	model := opts.Model
	if model == "" {
		model = "seedream-upscale"
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

func (c *Client) ID() domain.ProviderID { return domain.ProviderBytePlus }

type createTaskRequest struct {
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
}

type taskResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Content struct {
		ImageURL string `json:"image_url"`
		VideoURL string `json:"video_url"`
	} `json:"content"`
}

func (c *Client) Submit(ctx context.Context, req providers.SubmitRequest) (string, error) {
	if c.token == "" {
		return "", errors.New("byteplus: API key is missing")
	}
	payload := createTaskRequest{Model: c.model, Content: req.Params}
	var out taskResponse
	if err := c.do(ctx, http.MethodPost, "/contents/generations/tasks", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("byteplus: create task returned no id: %w", domain.ErrProviderFailure)
	}
	return out.ID, nil
}

func (c *Client) PollStatus(ctx context.Context, taskID string) (providers.StatusResult, error) {
	task, err := c.getTask(ctx, taskID)
	if err != nil {
		return providers.StatusResult{}, err
	}
	status, err := MapStatus(task.Status)
	if err != nil {
		return providers.StatusResult{}, err
	}
	detail := ""
	if task.Error != nil {
		detail = task.Error.Message
	}
	return providers.StatusResult{Status: status, Detail: detail}, nil
}

func (c *Client) FetchResult(ctx context.Context, taskID string) (providers.Result, error) {
	task, err := c.getTask(ctx, taskID)
	if err != nil {
		return providers.Result{}, err
	}
	mediaURL := task.Content.ImageURL
	mime := "image/png"
	if mediaURL == "" {
		mediaURL = task.Content.VideoURL
		mime = "video/mp4"
	}
	if mediaURL == "" {
		return providers.Result{}, fmt.Errorf("byteplus: task %s has no content url: %w", taskID, domain.ErrProviderFailure)
	}
	return providers.Result{MediaURL: mediaURL, MIME: mime}, nil
}

// Cancel deletes a queued task. ModelArk rejects deletes on running tasks;
// the error is returned for the caller to swallow.
func (c *Client) Cancel(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/contents/generations/tasks/"+taskID, nil, &struct{}{})
}

func (c *Client) getTask(ctx context.Context, taskID string) (*taskResponse, error) {
	var out taskResponse
	if err := c.do(ctx, http.MethodGet, "/contents/generations/tasks/"+taskID, nil, &out); err != nil {
		return nil, err
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
		return fmt.Errorf("byteplus: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("byteplus: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ providers.Adapter = (*Client)(nil)
