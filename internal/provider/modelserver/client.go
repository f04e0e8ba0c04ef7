package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
)

// ErrInvalidResponse wraps undecodable model server replies.
var ErrInvalidResponse = errors.New("invalid response from model server")

// codeNoFace is the ErrorResponse code the server uses when detection finds nothing.
const codeNoFace = "NO_FACE"

// Config holds the model server connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5006",
		Timeout: 60 * time.Second,
	}
}

// Client talks JSON to the landmark, emotion and style models.
type Client struct {
	httpClient *http.Client
	config     Config
}

func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

func (c *Client) Landmarks(ctx context.Context, req LandmarksRequest) (*LandmarksResponse, error) {
	var resp LandmarksResponse
	if err := c.post(ctx, "/landmarks", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error) {
	var resp ClassifyResponse
	if err := c.post(ctx, "/classify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Stylize(ctx context.Context, req StylizeRequest) (*StylizeResponse, error) {
	var resp StylizeResponse
	if err := c.post(ctx, "/stylize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health pings GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v", provider.ErrUnavailable, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return statusError(path, resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, path, err)
		}
	}
	return nil
}

func statusError(path string, status int, body []byte) error {
	var er ErrorResponse
	_ = json.Unmarshal(body, &er)

	if er.Code == codeNoFace {
		return fmt.Errorf("%s: %w", path, provider.ErrNoFaceDetected)
	}
	msg := er.Error
	if msg == "" {
		msg = string(body)
	}
	if status >= 500 {
		return fmt.Errorf("%w: %s returned status %d: %s", provider.ErrUnavailable, path, status, msg)
	}
	return fmt.Errorf("model server %s returned status %d: %s", path, status, msg)
}
