package metadata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/isdelr/second-brain-be/internal/models"
)

// FetchTimeout bounds the whole scrape; a slow page never blocks item creation
// for longer than this.
const FetchTimeout = 5 * time.Second

// Extractor scrapes page metadata from a URL. Implementations must be
// best-effort: callers treat any error as "no metadata".
type Extractor interface {
	Extract(ctx context.Context, url string) (*models.ItemMetadata, error)
}

// HTTPExtractor fetches a page and reads its standard HTML meta tags.
type HTTPExtractor struct {
	client *http.Client
}

// NewHTTPExtractor creates an extractor with its own bounded HTTP client.
func NewHTTPExtractor() *HTTPExtractor {
	return &HTTPExtractor{client: &http.Client{Timeout: FetchTimeout}}
}

// Extract fetches url and pulls title, description, thumbnail and author from
// the page's <title> and OpenGraph/standard meta tags.
func (e *HTTPExtractor) Extract(ctx context.Context, url string) (*models.ItemMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	meta := &models.ItemMetadata{
		Title:       firstNonEmpty(doc.Find("title").First().Text(), metaContent(doc, `meta[property="og:title"]`)),
		Description: firstNonEmpty(metaContent(doc, `meta[name="description"]`), metaContent(doc, `meta[property="og:description"]`)),
		Thumbnail:   metaContent(doc, `meta[property="og:image"]`),
		Author:      metaContent(doc, `meta[name="author"]`),
	}
	return meta, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return content
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
