package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"walletpay-backend/internal/walletpay"
	"walletpay-backend/pkg/logger"
)

// HTTPLoader fetches external vendor scripts and styles over HTTP. Each
// resource is fetched at most once; repeat loads of a URL already present
// resolve immediately, and a failed load is retried on the next request.
type HTTPLoader struct {
	httpClient *http.Client

	mu     sync.Mutex
	loaded map[string]bool
}

func New() *HTTPLoader {
	return &HTTPLoader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		loaded:     make(map[string]bool),
	}
}

var _ walletpay.Loader = (*HTTPLoader)(nil)

func (l *HTTPLoader) LoadScript(ctx context.Context, url string, attrs map[string]string) error {
	return l.load(ctx, url, "script")
}

func (l *HTTPLoader) LoadStyle(ctx context.Context, url string, attrs map[string]string) error {
	return l.load(ctx, url, "style")
}

func (l *HTTPLoader) load(ctx context.Context, url, kind string) error {
	if url == "" {
		return errors.New("resource URL is required")
	}

	l.mu.Lock()
	if l.loaded[url] {
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("loading %s %s returned status %d", kind, url, resp.StatusCode)
	}

	l.mu.Lock()
	l.loaded[url] = true
	l.mu.Unlock()

	logger.Debug("External resource loaded", map[string]interface{}{
		"kind": kind,
		"url":  url,
	})
	return nil
}
