// Package wavespeed adapts the WaveSpeed AI predictions API, used for
// background music generation.
package wavespeed

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
		base = "https://api.wavespeed.ai/api/v3"
	}
	model := opts.Model
	if model == "" {
		model = "minimax/music-01"
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

func (c *Client) ID() domain.ProviderID { return domain.ProviderWaveSpeed }

type predictionEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		ID      string   `json:"id"`
		Status  string   `json:"status"`
		Error   string   `json:"error"`
		Outputs []string `json:"outputs"`
	} `json:"data"`
}

func (c *Client) Submit(ctx context.Context, req providers.SubmitRequest) (string, error) {
	if c.token == "" {
		return "", errors.New("wavespeed: API key is missing")
	}
	var out predictionEnvelope
	if err := c.do(ctx, http.MethodPost, "/"+c.model, req.Params, &out); err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("wavespeed: prediction returned no id (%s): %w", out.Message, domain.ErrProviderFailure)
	}
	return out.Data.ID, nil
}

func (c *Client) PollStatus(ctx context.Context, taskID string) (providers.StatusResult, error) {
	pred, err := c.getResult(ctx, taskID)
	if err != nil {
		return providers.StatusResult{}, err
	}
	status, err := MapStatus(pred.Data.Status)
	if err != nil {
		return providers.StatusResult{}, err
	}
	return providers.StatusResult{Status: status, Detail: pred.Data.Error}, nil
}

func (c *Client) FetchResult(ctx context.Context, taskID string) (providers.Result, error) {
	pred, err := c.getResult(ctx, taskID)
	if err != nil {
		return providers.Result{}, err
	}
	if len(pred.Data.Outputs) == 0 {
		return providers.Result{}, fmt.Errorf("wavespeed: prediction %s has no outputs: %w", taskID, domain.ErrProviderFailure)
	}
	return providers.Result{MediaURL: pred.Data.Outputs[0], MIME: "audio/mpeg"}, nil
}

// Cancel is not supported by the predictions API; the resolver relies on
// the prediction running to a terminal state on its own.
func (c *Client) Cancel(ctx context.Context, taskID string) error {
	return nil
}

func (c *Client) getResult(ctx context.Context, taskID string) (*predictionEnvelope, error) {
	var out predictionEnvelope
	if err := c.do(ctx, http.MethodGet, "/predictions/"+taskID+"/result", nil, &out); err != nil {
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
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wavespeed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("wavespeed: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ providers.Adapter = (*Client)(nil)
