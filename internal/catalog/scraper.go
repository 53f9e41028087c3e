package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"ngmc-chatbot-backend/internal/models"
	"ngmc-chatbot-backend/internal/repo"

	"golang.org/x/net/html"
)

// Mode selects how anchors on a page are recognised as resource links.
type Mode int

const (
	// ModePDFHref keeps every anchor whose href ends in .pdf.
	ModePDFHref Mode = iota
	// ModeOpenText keeps anchors whose visible text contains "open".
	ModeOpenText
)

type Source struct {
	Category string
	URL      string
	Mode     Mode
}

// DefaultSources lists the college pages the catalog is built from.
func DefaultSources() []Source {
	return []Source{
		{Category: models.CategoryExamSchedule, URL: "https://coe.ngmc.ac.in/exam-schedule/", Mode: ModePDFHref},
		{Category: models.CategoryFeeStructure, URL: "https://www.ngmc.org/admissions/fee-structure/", Mode: ModePDFHref},
		{Category: models.CategorySeatingArrangements, URL: "https://coe.ngmc.ac.in/seating-arrangements/", Mode: ModeOpenText},
		{Category: models.CategorySyllabus, URL: "https://www.ngmc.org/syllabus-list-2/", Mode: ModeOpenText},
	}
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

type Harvester struct {
	client    *http.Client
	sources   []Source
	resources repo.ResourceRepoInterface
}

func NewHarvester(resources repo.ResourceRepoInterface, sources []Source) *Harvester {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	return &Harvester{
		client:    &http.Client{Timeout: 30 * time.Second},
		sources:   sources,
		resources: resources,
	}
}

// Refresh fetches every source page, extracts its links and persists them.
// It returns per-category link counts. A page that cannot be fetched fails
// the whole refresh; the previous catalog stays untouched for the
// categories not yet written.
func (h *Harvester) Refresh(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(h.sources))

	for _, src := range h.sources {
		links, err := h.fetch(ctx, src)
		if err != nil {
			return counts, fmt.Errorf("harvest %s: %w", src.Category, err)
		}
		if err := h.resources.UpsertCategory(src.Category, links); err != nil {
			return counts, fmt.Errorf("store %s: %w", src.Category, err)
		}
		counts[src.Category] = len(links)
	}

	return counts, nil
}

func (h *Harvester) fetch(ctx context.Context, src Source) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, src.URL)
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, err
	}
	return ExtractLinks(resp.Body, base, src.Mode)
}

// ExtractLinks parses an HTML page and collects resource links keyed by the
// link file's basename without extension. Relative hrefs are resolved
// against base.
func ExtractLinks(r io.Reader, base *url.URL, mode Mode) (map[string]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	links := map[string]string{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, text, ok := anchorParts(n); ok && keep(href, text, mode) {
				resolved := resolve(base, href)
				links[linkName(resolved)] = resolved
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

func anchorParts(n *html.Node) (href string, text string, ok bool) {
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			ok = true
		}
	}
	var sb strings.Builder
	var collect func(c *html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	collect(n)
	return href, sb.String(), ok && href != ""
}

func keep(href string, text string, mode Mode) bool {
	switch mode {
	case ModeOpenText:
		return strings.Contains(strings.ToLower(text), "open")
	default:
		return strings.HasSuffix(strings.ToLower(href), ".pdf")
	}
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func linkName(link string) string {
	name := path.Base(link)
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		name = path.Base(u.Path)
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
