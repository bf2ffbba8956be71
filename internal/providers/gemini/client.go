// Package gemini adapts the Google Generative Language API. Image ads run
// through the predictLongRunning surface so that every vendor behind the
// registry exposes the same submit/poll/fetch shape.
package gemini

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
	apiKey     string
	model      string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := opts.Model
	if model == "" {
		model = "imagen-4.0-generate-001"
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
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
	}
}

func (c *Client) ID() domain.ProviderID { return domain.ProviderGemini }

// operation mirrors google.longrunning.Operation as serialized by the API.
type operation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response struct {
		Predictions []struct {
			URI      string `json:"uri"`
			MIMEType string `json:"mimeType"`
		} `json:"predictions"`
	} `json:"response"`
}

type predictRequest struct {
	Instances []json.RawMessage `json:"instances"`
}

func (c *Client) Submit(ctx context.Context, req providers.SubmitRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("gemini: API key is missing")
	}
	payload := predictRequest{Instances: []json.RawMessage{req.Params}}
	var op operation
	if err := c.do(ctx, http.MethodPost, "/models/"+c.model+":predictLongRunning", payload, &op); err != nil {
		return "", err
	}
	if op.Name == "" {
		return "", fmt.Errorf("gemini: predictLongRunning returned no operation name: %w", domain.ErrProviderFailure)
	}
	return op.Name, nil
}

func (c *Client) PollStatus(ctx context.Context, taskID string) (providers.StatusResult, error) {
	op, err := c.getOperation(ctx, taskID)
	if err != nil {
		return providers.StatusResult{}, err
	}
	return providers.StatusResult{Status: MapOperation(op.Done, op.Error != nil), Detail: opError(op)}, nil
}

func (c *Client) FetchResult(ctx context.Context, taskID string) (providers.Result, error) {
	op, err := c.getOperation(ctx, taskID)
	if err != nil {
		return providers.Result{}, err
	}
	if op.Error != nil {
		return providers.Result{}, fmt.Errorf("gemini: operation failed: %s: %w", op.Error.Message, domain.ErrProviderFailure)
	}
	if len(op.Response.Predictions) == 0 {
		return providers.Result{}, fmt.Errorf("gemini: operation %s has no predictions: %w", taskID, domain.ErrProviderFailure)
	}
	pred := op.Response.Predictions[0]
	mime := pred.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return providers.Result{MediaURL: pred.URI, MIME: mime}, nil
}

// Cancel maps to operations.cancel; already-done operations return an
// error upstream which the caller treats as best effort.
func (c *Client) Cancel(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodPost, "/"+taskID+":cancel", struct{}{}, &struct{}{})
}

func (c *Client) getOperation(ctx context.Context, name string) (*operation, error) {
	var op operation
	if err := c.do(ctx, http.MethodGet, "/"+strings.TrimPrefix(name, "/"), nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

func opError(op *operation) string {
	if op.Error == nil {
		return ""
	}
	return op.Error.Message
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
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("gemini: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ providers.Adapter = (*Client)(nil)
