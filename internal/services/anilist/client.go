package anilist

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/amaumene/tempus/internal/config"
	"github.com/amaumene/tempus/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	userAgent    = "tempus/1.0"
	tracerName   = "github.com/amaumene/tempus/internal/services/anilist"
	maxErrorBody = 4096
)

var (
	// ErrRateLimited is returned when AniList keeps answering 429 after all retries
	ErrRateLimited = errors.New("anilist rate limit exceeded")

	// ErrAnimeNotFound is returned when a media id does not exist
	ErrAnimeNotFound = errors.New("anime not found")
)

// StatusError is returned for non-2xx responses other than 429
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("anilist returned status %d: %s", e.StatusCode, e.Body)
}

// GraphQLError is returned when the response carries a GraphQL errors array
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql error: " + strings.Join(e.Messages, "; ")
}

// Client handles communication with the AniList GraphQL API.
// Outbound requests are spaced by a minimum interval, retried on 429 and
// successful responses are cached for a fixed TTL.
type Client struct {
	url         string
	httpClient  *http.Client
	cache       *cache.Cache
	minInterval time.Duration
	maxRetries  int
	retryDelay  time.Duration
	tracer      trace.Tracer
	logger      *logrus.Logger

	mu       sync.Mutex
	lastSend time.Time
}

// NewClient creates a new AniList API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.AniListURL == "" {
		return nil, fmt.Errorf("AniList URL is required")
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive")
	}

	return &Client{
		url:         cfg.AniListURL,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		cache:       cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		minInterval: cfg.MinRequestInterval,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		tracer:      otel.Tracer(tracerName),
		logger:      logger,
	}, nil
}

// ClearCache drops every cached response
func (c *Client) ClearCache() {
	c.cache.Flush()
}

// CachedResponses returns the number of cached responses, expired ones included
// until the janitor runs
func (c *Client) CachedResponses() int {
	return c.cache.ItemCount()
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// doQuery runs a GraphQL query and decodes its data object into result
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	// encoding/json sorts map keys, so the body doubles as a canonical request signature
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	key := cacheKey(body)

	if cached, ok := c.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		c.logger.WithField("key", key[:12]).Debug("AniList cache hit")
		return decodeData(cached.([]byte), result)
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	ctx, span := c.tracer.Start(ctx, "anilist.query", trace.WithAttributes(
		attribute.String("anilist.request_key", key[:12]),
	))
	defer span.End()

	var data []byte
	attempts := 0
	operation := func() error {
		attempts++
		d, err := c.send(ctx, body)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				return err
			}
			return backoff.Permanent(err)
		}
		data = d
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: c.retryDelay}, uint64(c.maxRetries)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		metrics.AniListRetries.Inc()
		c.logger.WithFields(logrus.Fields{
			"attempt": attempts,
			"wait":    wait,
		}).Warn("AniList rate limit hit, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		span.SetAttributes(attribute.Int("anilist.attempts", attempts))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("anilist.attempts", attempts))

	c.cache.Set(key, data, cache.DefaultExpiration)
	return decodeData(data, result)
}

// send performs a single throttled POST and returns the GraphQL data object
func (c *Client) send(ctx context.Context, body []byte) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.WithField("url", c.url).Debug("Making AniList request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.AniListRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AniListRequests.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		metrics.AniListRequests.WithLabelValues("rate_limited").Inc()
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.AniListRequests.WithLabelValues("http_error").Inc()
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        string(bodyBytes),
		}).Debug("AniList returned non-OK status")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var gql graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gql); err != nil {
		metrics.AniListRequests.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(gql.Errors) > 0 {
		metrics.AniListRequests.WithLabelValues("graphql_error").Inc()
		messages := make([]string, 0, len(gql.Errors))
		for _, e := range gql.Errors {
			messages = append(messages, e.Message)
		}
		return nil, &GraphQLError{Messages: messages}
	}

	metrics.AniListRequests.WithLabelValues("ok").Inc()
	return gql.Data, nil
}

// wait blocks until at least minInterval has passed since the last send,
// then claims the current instant. A caller that gives up on ctx claims
// nothing, so later requests never queue behind abandoned ones.
func (c *Client) wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		delay := time.Until(c.lastSend.Add(c.minInterval))
		if delay <= 0 {
			c.lastSend = time.Now()
			c.mu.Unlock()
			return nil
		}
		c.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func decodeData(data []byte, result interface{}) error {
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func cacheKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// linearBackOff waits step, 2*step, 3*step, ... between attempts
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
