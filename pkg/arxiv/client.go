package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public arXiv query API.
const DefaultBaseURL = "https://export.arxiv.org/api/query"

// Client queries the arXiv Atom API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Authors   []atomAuthor `xml:"author"`
	Published string       `xml:"published"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Search runs an all-fields keyword query against the API and returns
// candidates in the feed's relevance order.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 20
	}

	q := url.Values{}
	q.Set("search_query", "all:"+query)
	q.Set("max_results", fmt.Sprintf("%d", maxResults))
	q.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: decoding feed: %v", ErrUnavailable, err)
	}

	results := make([]Result, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		results = append(results, parseAtomEntry(entry))
	}

	c.logger.Debug("arxiv search",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)

	return results, nil
}

func parseAtomEntry(entry atomEntry) Result {
	// Extract ID from the URL (e.g., http://arxiv.org/abs/2301.00001v1 -> 2301.00001)
	arxivID := ""
	if idx := strings.LastIndex(entry.ID, "/abs/"); idx >= 0 {
		arxivID = entry.ID[idx+5:]
		// Remove version suffix
		if vIdx := strings.LastIndex(arxivID, "v"); vIdx > 0 {
			arxivID = arxivID[:vIdx]
		}
	}

	var authors []string
	for _, a := range entry.Authors {
		authors = append(authors, a.Name)
	}

	published, _ := time.Parse(time.RFC3339, entry.Published)

	return Result{
		ArxivID:   arxivID,
		Title:     strings.Join(strings.Fields(entry.Title), " "),
		Abstract:  strings.TrimSpace(entry.Summary),
		Authors:   authors,
		Published: published,
	}
}

// Ensure Client implements Searcher
var _ Searcher = (*Client)(nil)
