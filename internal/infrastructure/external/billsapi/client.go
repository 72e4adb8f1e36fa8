// Package billsapi is the HTTP client of the bills resource served by
// cmd/server.
package billsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// HTTPClient interface for testability
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx responses. Its message mirrors what
// the bills page shows, e.g. "Erreur 404".
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Erreur %d", e.Code)
}

// envelope mirrors the server's response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client implements port.RemoteStore over HTTP
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *zap.Logger
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bills returns the bills resource
func (c *Client) Bills() port.BillsResource {
	return &billsResource{client: c}
}

type billsResource struct {
	client *Client
}

// Create uploads the receipt as multipart form data
func (r *billsResource) Create(ctx context.Context, req port.CreateRequest) (*entity.UploadResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("email", req.Email); err != nil {
		return nil, fmt.Errorf("write email field: %w", err)
	}

	// CreateFormFile would declare application/octet-stream; the server
	// checks the declared type
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.File.Name))
	h.Set("Content-Type", req.File.MediaType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(req.File.Content); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var result entity.UploadResult
	if err := r.client.do(ctx, http.MethodPost, "/api/v1/bills", w.FormDataContentType(), &body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update patches the bill under req.Selector, or creates it when the
// selector is empty
func (r *billsResource) Update(ctx context.Context, req port.UpdateRequest) error {
	payload, err := json.Marshal(req.Bill)
	if err != nil {
		return fmt.Errorf("encode bill: %w", err)
	}

	method, path := http.MethodPatch, "/api/v1/bills/"+url.PathEscape(req.Selector)
	if req.Selector == "" {
		method, path = http.MethodPost, "/api/v1/bills"
	}
	return r.client.do(ctx, method, path, "application/json", bytes.NewReader(payload), nil)
}

// List fetches every bill
func (r *billsResource) List(ctx context.Context) ([]entity.Bill, error) {
	var stored []entity.StoredBill
	if err := r.client.do(ctx, http.MethodGet, "/api/v1/bills", "", nil, &stored); err != nil {
		return nil, err
	}

	bills := make([]entity.Bill, len(stored))
	for i, s := range stored {
		bills[i] = s.Bill
	}
	return bills, nil
}

// do sends a request and decodes the envelope's data into out when non-nil
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Bills API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode, Message: env.Error}
		c.logger.Error("Bills API returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", env.Error))
		return statusErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

var _ port.RemoteStore = (*Client)(nil)
