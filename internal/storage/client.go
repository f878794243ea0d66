package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrStorageUnavailable = errors.New("object storage client unavailable")

// ObjectStore is the narrow object-storage contract the pipelines consume:
// short-lived retrieval URLs for the fetcher, uploads and compensating
// deletes for the drafter.
type ObjectStore interface {
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string, overwrite bool) error
	Delete(ctx context.Context, bucket, path string) error
}

type ClientConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to a Supabase-compatible storage HTTP API.
type Client struct {
	baseURL    string
	serviceKey string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(config ClientConfig) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(config.BaseURL), "/"),
		serviceKey: strings.TrimSpace(config.ServiceKey),
		timeout:    config.Timeout,
		httpClient: config.HTTPClient,
	}
}

func (c *Client) Available() bool {
	return c.baseURL != "" && c.serviceKey != ""
}

// SignedURL asks the storage service for a short-lived retrieval URL.
func (c *Client) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	if !c.Available() {
		return "", ErrStorageUnavailable
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	payload, err := json.Marshal(map[string]any{
		"expiresIn": int(ttl.Seconds()),
	})
	if err != nil {
		return "", fmt.Errorf("marshal sign payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/object/sign/%s/%s", c.baseURL, url.PathEscape(bucket), escapeObjectPath(path))
	body, err := c.do(ctx, http.MethodPost, endpoint, payload, "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("sign %s/%s: %w", bucket, path, err)
	}

	var decoded struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode sign response: %w", err)
	}
	if strings.TrimSpace(decoded.SignedURL) == "" {
		return "", errors.New("sign response without signedURL")
	}
	if strings.HasPrefix(decoded.SignedURL, "http://") || strings.HasPrefix(decoded.SignedURL, "https://") {
		return decoded.SignedURL, nil
	}
	return c.baseURL + "/" + strings.TrimPrefix(decoded.SignedURL, "/"), nil
}

// Upload stores an object. With overwrite enabled the write replaces any
// existing object at the same path.
func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte, contentType string, overwrite bool) error {
	if !c.Available() {
		return ErrStorageUnavailable
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	headers := map[string]string{}
	if overwrite {
		headers["x-upsert"] = "true"
	}

	endpoint := fmt.Sprintf("%s/object/%s/%s", c.baseURL, url.PathEscape(bucket), escapeObjectPath(path))
	if _, err := c.do(ctx, http.MethodPost, endpoint, data, contentType, headers); err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

// Delete removes an object. Used by the drafting pipeline's compensating
// cleanup after a failed database insert.
func (c *Client) Delete(ctx context.Context, bucket, path string) error {
	if !c.Available() {
		return ErrStorageUnavailable
	}

	endpoint := fmt.Sprintf("%s/object/%s/%s", c.baseURL, url.PathEscape(bucket), escapeObjectPath(path))
	if _, err := c.do(ctx, http.MethodDelete, endpoint, nil, "", nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, contentType string, headers map[string]string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	request, err := http.NewRequestWithContext(timeoutCtx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create storage request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("storage transport error: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read storage body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		message := strings.TrimSpace(string(body))
		if len(message) > 500 {
			message = message[:500]
		}
		return nil, fmt.Errorf("storage status %d: %s", response.StatusCode, message)
	}
	return body, nil
}

// escapeObjectPath escapes each path segment while keeping separators.
func escapeObjectPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
