package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"browsebot-cli/internal/config"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Server, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		log: log.With().Str("component", "api").Logger(),
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// --- Query (single response) ---

type QueryRequest struct {
	Query      string `json:"query"`
	MaxSources int    `json:"max_sources,omitempty"`
	Stream     bool   `json:"stream"`
}

type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Query   string   `json:"query"`
}

func (c *Client) Query(ctx context.Context, query string, maxSources int) (*QueryResponse, error) {
	reqBody := QueryRequest{
		Query:      query,
		MaxSources: maxSources,
		Stream:     false,
	}
	var resp QueryResponse
	if err := c.doJSON(ctx, "POST", "/api/query", reqBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Query (streaming) ---

// QueryStream opens the SSE answer stream. Decoded events arrive on the
// first channel in wire order; the channel closes when the server ends the
// stream, whether or not a done frame was seen. A read failure mid-stream
// is delivered on the error channel after the event channel closes.
func (c *Client) QueryStream(ctx context.Context, query string, maxSources int) (<-chan Event, <-chan error, error) {
	reqBody := QueryRequest{
		Query:      query,
		MaxSources: maxSources,
		Stream:     true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/stream", bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(errBody))
	}

	events := make(chan Event, 64)
	errc := make(chan error, 1)

	go func() {
		defer close(events)
		defer resp.Body.Close()

		dec := &FrameDecoder{}
		buf := make([]byte, 4096)

		for {
			n, readErr := resp.Body.Read(buf)
			if n > 0 {
				for _, payload := range dec.Feed(buf[:n]) {
					ev, perr := ParseEvent(payload)
					if perr != nil {
						c.log.Debug().Err(perr).Bytes("payload", payload).Msg("dropping malformed frame")
						continue
					}
					if ev == nil {
						c.log.Debug().Bytes("payload", payload).Msg("ignoring unknown frame type")
						continue
					}
					select {
					case events <- ev:
					case <-ctx.Done():
						errc <- ctx.Err()
						return
					}
				}
			}
			if readErr != nil {
				if readErr != io.EOF {
					errc <- fmt.Errorf("reading stream: %w", readErr)
				} else if dec.Pending() {
					c.log.Debug().Msg("stream ended mid-frame, discarding fragment")
				}
				return
			}
		}
	}()

	return events, errc, nil
}

// --- Status endpoints ---

type ServiceInfo struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (c *Client) ServiceInfo(ctx context.Context) (*ServiceInfo, error) {
	var resp ServiceInfo
	if err := c.doJSON(ctx, "GET", "/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type HealthStatus struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.doJSON(ctx, "GET", "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Generic JSON helper ---

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody interface{}, result interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil && method != "GET" {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
