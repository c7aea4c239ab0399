// internal/tile/fetcher.go - WMTS tile fetching implementation
package tile

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"aerial-to-topo/internal/config"
)

// HTTPFetcher retrieves source tiles from a WMTS endpoint
type HTTPFetcher struct {
	client    *http.Client
	wmts      *config.WMTSConfig
	userAgent string
}

// NewHTTPFetcher creates a new WMTS-backed tile fetcher
func NewHTTPFetcher(cfg *config.Config) *HTTPFetcher {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Network.MaxIdleConns,
		IdleConnTimeout:     cfg.Network.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxConnsPerHost:     cfg.Batch.Concurrency,
	}

	client := &http.Client{
		Timeout:   cfg.WMTS.Timeout,
		Transport: transport,
	}

	return &HTTPFetcher{
		client:    client,
		wmts:      &cfg.WMTS,
		userAgent: cfg.Network.UserAgent,
	}
}

// Fetch retrieves a single tile image from the configured WMTS server
func (f *HTTPFetcher) Fetch(request *Request) (*Response, error) {
	start := time.Now()

	req, err := f.buildHTTPRequest(request)
	if err != nil {
		return &Response{
			Request: request,
			Error:   fmt.Errorf("failed to build HTTP request: %w", err),
		}, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &Response{
			Request:   request,
			FetchTime: time.Since(start),
			Error:     fmt.Errorf("HTTP request failed: %w", err),
		}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Response{
			Request:    request,
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			FetchTime:  time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}, err
	}

	response := &Response{
		Request:    request,
		Data:       data,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		Size:       len(data),
		FetchTime:  time.Since(start),
	}

	if resp.StatusCode != http.StatusOK {
		response.Error = fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return response, response.Error
	}

	return response, nil
}

// FetchWithRetry implements retry logic for failed tile requests
func (f *HTTPFetcher) FetchWithRetry(request *Request) (*Response, error) {
	var lastResponse *Response
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= f.wmts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoffDelay := time.Duration(attempt*attempt) * time.Second
			time.Sleep(backoffDelay)
		}

		attempts++
		response, err := f.Fetch(request)
		if err == nil {
			return response, nil
		}

		lastResponse = response
		lastErr = err

		if !f.shouldRetry(response) {
			break
		}
	}

	return lastResponse, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// buildHTTPRequest constructs an HTTP request from a tile request
func (f *HTTPFetcher) buildHTTPRequest(tileReq *Request) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, tileReq.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png")
	req.Header.Set("User-Agent", f.userAgent)

	for key, value := range tileReq.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// shouldRetry determines whether a failed request should be retried
func (f *HTTPFetcher) shouldRetry(response *Response) bool {
	// Always retry on network errors
	if response == nil {
		return true
	}

	// Don't retry on client errors (4xx)
	if response.StatusCode >= 400 && response.StatusCode < 500 {
		return false
	}

	// Retry on server errors (5xx) and transport failures
	return response.StatusCode >= 500 || response.StatusCode == 0
}
