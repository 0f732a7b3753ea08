package loader

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"techdocs/internal/domain"
)

// WebLoader fetches a URL and converts the page to plain text.
type WebLoader struct {
	client *http.Client
}

// NewWebLoader creates a web loader with a bounded request timeout.
func NewWebLoader() *WebLoader {
	return &WebLoader{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Load fetches the URL and returns one document tagged with web provenance.
func (l *WebLoader) Load(source string) ([]domain.Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}
	if _, err := url.ParseRequestURI(source); err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", source, err)
	}

	resp, err := l.client.Get(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load content from URL %q: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to load content from URL %q: status %s", source, resp.Status)
	}

	text, err := htmlToText(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content from URL %q: %w", source, err)
	}

	return []domain.Document{{
		Text: text,
		Metadata: domain.Metadata{
			SourceType: l.SourceType(),
			SourceURL:  source,
		},
	}}, nil
}

// SourceType identifies this as a web source.
func (l *WebLoader) SourceType() string {
	return "web"
}

var collapseWhitespace = regexp.MustCompile(`\n{3,}`)

// htmlToText extracts readable text from an HTML response. Prefers main and
// article regions; falls back to the whole body.
func htmlToText(resp *http.Response) (string, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, nav, header, footer").Remove()

	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}

	var parts []string
	sel.Find("h1, h2, h3, h4, p, li, pre, td").Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t != "" {
			parts = append(parts, t)
		}
	})

	if len(parts) == 0 {
		// Pages without any of the expected elements still carry text.
		return strings.TrimSpace(doc.Text()), nil
	}

	return collapseWhitespace.ReplaceAllString(strings.Join(parts, "\n"), "\n\n"), nil
}
