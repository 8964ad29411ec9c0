package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Mention is a free-form reference to a person or task, captured by the
// family app and queued on the relay until this service pulls it.
type Mention struct {
	// ID is the relay's identifier for the mention, used for acking.
	ID string `json:"id"`

	// Kind is "person" or "task".
	Kind string `json:"kind"`

	// Text is the raw mention as the user typed or said it.
	Text string `json:"text"`

	// CreatedBy is the roster ID of the person whose record the mention
	// appeared in, when the app knows it. Feeds the context-boost stage.
	CreatedBy string `json:"created_by,omitempty"`

	// ObservedAt is when the app captured the mention.
	ObservedAt time.Time `json:"observed_at"`
}

// Mention kinds delivered by the relay.
const (
	MentionKindPerson = "person"
	MentionKindTask   = "task"
)

// mentionsResponse is the relay's fetch payload.
type mentionsResponse struct {
	Mentions   []Mention `json:"mentions"`
	NextCursor string    `json:"next_cursor"`
}

// Client is a rate-limited, circuit-broken HTTP client for the mention relay.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *CircuitBreaker
}

// NewClient creates a relay client. limit is the outbound request rate in
// requests per second; burst is the token-bucket burst size.
func NewClient(baseURL, token string, limit float64, burst int) *Client {
	if limit <= 0 {
		limit = 5
	}
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(limit), burst),
		breaker:    NewCircuitBreaker(),
	}
}

// BreakerState returns the circuit breaker state for the stats endpoint.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

// BreakerMetrics returns the circuit breaker counters.
func (c *Client) BreakerMetrics() CircuitBreakerMetrics {
	return c.breaker.Metrics()
}

// FetchMentions pulls the next batch of pending mentions after cursor.
// An empty cursor starts from the oldest pending mention. Returns the batch
// and the cursor to pass on the next call.
func (c *Client) FetchMentions(ctx context.Context, cursor string) ([]Mention, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, cursor, err
	}

	endpoint := c.baseURL + "/v1/mentions"
	if cursor != "" {
		endpoint += "?cursor=" + url.QueryEscape(cursor)
	}

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("relay fetch failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("relay fetch returned status %d", resp.StatusCode)
		}

		var payload mentionsResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("relay fetch returned invalid JSON: %w", err)
		}
		return &payload, nil
	})
	if err != nil {
		return nil, cursor, err
	}

	payload := result.(*mentionsResponse)
	next := payload.NextCursor
	if next == "" {
		next = cursor
	}
	return payload.Mentions, next, nil
}

// AckMentions marks mentions as processed so the relay stops redelivering
// them. A nil or empty ids slice is a no-op.
func (c *Client) AckMentions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(map[string][]string{"ids": ids})
	if err != nil {
		return fmt.Errorf("failed to encode ack payload: %w", err)
	}

	_, err = c.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/mentions/ack", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("relay ack failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return nil, fmt.Errorf("relay ack returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
