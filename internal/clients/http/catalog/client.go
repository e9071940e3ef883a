// Package catalog dials the external catalog service for book lookups.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
	"github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
)

var _ ports.BookClient = (*Client)(nil)

// Client wraps the catalog HTTP API with a typed lookup helper.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the catalog client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid catalog base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

type bookPayload struct {
	ISBN   string  `json:"isbn"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

// GetBookByISBN fetches book metadata from the catalog. A 404 maps to
// ports.ErrBookNotFound; every other failure is a transport error and stays
// distinguishable from a miss.
func (c *Client) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("catalog client not configured")
	}
	endpoint := fmt.Sprintf("%s/books/%s", c.baseURL, url.PathEscape(isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call catalog API: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload bookPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode catalog response: %w", err)
		}
		return &domain.Book{
			ISBN:   payload.ISBN,
			Title:  payload.Title,
			Author: payload.Author,
			Price:  payload.Price,
		}, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ports.ErrBookNotFound
	default:
		return nil, fmt.Errorf("catalog API returned status %d", resp.StatusCode)
	}
}
