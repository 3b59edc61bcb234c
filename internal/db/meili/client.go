// Package meili is the Meilisearch index driver, built on the official Go SDK.
package meili

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"github.com/kailas-cloud/papersearch/internal/db"
)

// Compile-time check: Store implements db.Index.
var _ db.Index = (*Store)(nil)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultPollInterval   = 100 * time.Millisecond
	healthAvailable       = "available"
)

// Config holds connection parameters for a Meilisearch server.
type Config struct {
	URL            string
	APIKey         string
	RequestTimeout time.Duration
	// TaskPollInterval is how often settings tasks are polled; 0 means 100ms.
	TaskPollInterval time.Duration
}

// Store implements db.Index via meilisearch-go.
type Store struct {
	client       meilisearch.ServiceManager
	httpClient   *http.Client
	pollInterval time.Duration
}

// NewStore creates a Meilisearch store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	poll := cfg.TaskPollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	httpClient := &http.Client{Timeout: timeout}
	client := meilisearch.New(strings.TrimRight(cfg.URL, "/"),
		meilisearch.WithAPIKey(cfg.APIKey),
		meilisearch.WithCustomClient(httpClient),
	)

	return &Store{
		client:       client,
		httpClient:   httpClient,
		pollInterval: poll,
	}, nil
}

// Ping checks that the server reports itself available.
func (s *Store) Ping(ctx context.Context) error {
	health, err := s.client.HealthWithContext(ctx)
	if err != nil {
		return &db.Error{Op: db.OpMeiliHealth, Err: err}
	}
	if health.Status != healthAvailable {
		return &db.Error{Op: db.OpMeiliHealth, Err: fmt.Errorf("status %q", health.Status)}
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.httpClient.CloseIdleConnections()
}

// WaitForReady polls Ping until the server responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for meilisearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// TaskError is a failed asynchronous task, such as a settings update.
type TaskError struct {
	UID     int64
	Code    string
	Message string
}

func (e *TaskError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("task %d failed: %s", e.UID, e.Message)
	}
	return fmt.Sprintf("task %d failed (%s): %s", e.UID, e.Code, e.Message)
}

// IsAPIError reports whether err carries a Meilisearch error with the given code,
// either from a rejected request or from a failed task.
func IsAPIError(err error, code string) bool {
	var apiErr *meilisearch.Error
	if errors.As(err, &apiErr) {
		return apiErr.MeilisearchApiError.Code == code
	}
	var taskErr *TaskError
	return errors.As(err, &taskErr) && taskErr.Code == code
}

// StatusCode returns the HTTP status of a rejected request, or 0.
func StatusCode(err error) int {
	var apiErr *meilisearch.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
