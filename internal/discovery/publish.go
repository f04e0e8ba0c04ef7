package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PublisherConfig points at a LeanCloud-style object endpoint that stores
// the current server address for clients outside the local network.
type PublisherConfig struct {
	URL     string
	AppID   string
	AppKey  string
	Timeout time.Duration
}

type Publisher struct {
	config PublisherConfig
	client *http.Client
}

func NewPublisher(config PublisherConfig) *Publisher {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &Publisher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

type publishRequest struct {
	Address string `json:"address"`
}

// Publish PUTs {"address": address} to the registry. Any non-200 answer is an error.
func (p *Publisher) Publish(ctx context.Context, address string) error {
	body, err := json.Marshal(publishRequest{Address: address})
	if err != nil {
		return fmt.Errorf("marshal publish request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-LC-Id", p.config.AppID)
	req.Header.Set("X-LC-Key", p.config.AppKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish address: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("publish address: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
