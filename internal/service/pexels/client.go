package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/azhar1598/xplore-be/internal/constants"
	"github.com/azhar1598/xplore-be/internal/util"
	"github.com/azhar1598/xplore-be/pkg/errors"
)

const (
	providerName   = "pexels"
	DefaultBaseURL = "https://api.pexels.com/v1"
)

type searchResponse struct {
	Photos []photo `json:"photos"`
}

type photo struct {
	ID  int64     `json:"id"`
	Src photoSrcs `json:"src"`
}

type photoSrcs struct {
	Original string `json:"original"`
	Large    string `json:"large"`
	Medium   string `json:"medium"`
	Small    string `json:"small"`
}

// Client searches Pexels for a thumbnail image.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger

	maxAttempts int
	baseDelay   time.Duration
	jitter      time.Duration
}

func NewClient(apiKey, baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ProviderTimeouts.Image}
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  httpClient,
		logger:      logger,
		maxAttempts: constants.RetryConfig.MaxAttempts,
		baseDelay:   constants.RetryConfig.BaseDelay,
		jitter:      constants.RetryConfig.Jitter,
	}
}

// SearchImage returns the medium-size URL of the first photo for businessName,
// or "" when there are no photos.
func (c *Client) SearchImage(ctx context.Context, businessName string) (string, error) {
	endpoint := fmt.Sprintf("%s/search?query=%s&per_page=1", c.baseURL, url.QueryEscape(businessName))

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, retryable, err := c.search(ctx, endpoint)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable || attempt == c.maxAttempts {
			break
		}

		delay := util.Backoff(attempt, c.baseDelay, c.jitter)
		c.logger.Debug("Pexels search retry",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", errors.NewProviderError("pexels search cancelled", providerName, ctx.Err())
		case <-time.After(delay):
		}
	}

	return "", errors.NewProviderError("pexels search failed", providerName, lastErr)
}

func (c *Client) search(ctx context.Context, endpoint string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// retry transport errors unless the caller gave up
		return "", ctx.Err() == nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("pexels returned %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Photos) == 0 {
		return "", false, nil
	}
	return payload.Photos[0].Src.Medium, false, nil
}
