// Package api talks to the catalogue search endpoint and the manifest resolver.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/hifi/internal/domain"
)

// Client implements domain.SearchRepository and domain.ManifestRepository
type Client struct {
	searchURL  string
	trackURL   string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new API client. Requests use transport defaults and are never retried.
func NewClient(searchURL, trackURL, userAgent string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		searchURL:  searchURL,
		trackURL:   trackURL,
		userAgent:  userAgent,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// doRequest performs a GET with the identifying client header and returns the body
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("api request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("api request error", "status", resp.StatusCode, "bodyLen", len(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// Search returns the tracks matching a free-text query, in server order
func (c *Client) Search(ctx context.Context, query string) ([]domain.Track, error) {
	body, err := c.doRequest(ctx, c.searchURL+encodeQuery(query))
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return MapTracks(resp.Data.Items), nil
}

// FetchManifest returns the encoded manifest for a track at a quality tier
func (c *Client) FetchManifest(ctx context.Context, trackID int64, quality string) (string, error) {
	query := "id=" + strconv.FormatInt(trackID, 10) + "&quality=" + url.QueryEscape(quality)

	body, err := c.doRequest(ctx, c.trackURL+query)
	if err != nil {
		return "", err
	}

	var resp TrackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return "", fmt.Errorf("failed to parse track response: %w", err)
	}

	if resp.Data.Manifest == "" {
		return "", domain.ErrManifestMissing
	}

	c.logger.Debug("manifest fetched",
		"trackID", trackID,
		"quality", quality,
		"mimeType", resp.Data.ManifestMimeType,
		"len", len(resp.Data.Manifest))

	return resp.Data.Manifest, nil
}

// encodeQuery escapes each word of the query and joins the words with %20
func encodeQuery(query string) string {
	words := strings.Split(query, " ")
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return strings.Join(words, "%20")
}
