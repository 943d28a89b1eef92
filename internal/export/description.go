package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/shoplo-hq/shoplo-go/internal/domain"
	"github.com/shoplo-hq/shoplo-go/internal/logger"
)

const (
	maxDescriptionBytes = 256 << 10 // 256 KiB
	maxSummaryRunes     = 500
)

// Enricher converts embedded description HTML into plain-text summaries and
// collects the image URLs the markup references. Shop admins write product
// descriptions in a WYSIWYG editor, so payloads carry HTML fragments.
type Enricher struct {
	log logger.Logger
}

// NewEnricher constructs an enricher with the provided logger (or no-op).
func NewEnricher(log logger.Logger) *Enricher {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Enricher{log: log}
}

// Enrich rewrites resource summaries, returning what it has on abort.
func (e *Enricher) Enrich(ctx context.Context, resources []domain.Resource) []domain.Resource {
	out := append([]domain.Resource(nil), resources...)

	for i, res := range resources {
		select {
		case <-ctx.Done():
			return out[:i]
		default:
		}

		enriched, err := enrichFromDescription(res)
		if err != nil {
			e.log.WarnObj("description parse failed", "description_error", map[string]any{
				"resource_id": res.ID,
				"collection":  res.Collection,
				"error":       err.Error(),
			})
			continue
		}
		out[i] = enriched
	}

	return out
}

func enrichFromDescription(res domain.Resource) (domain.Resource, error) {
	raw := strings.TrimSpace(res.Summary)
	if raw == "" {
		return res, nil
	}
	if !strings.Contains(raw, "<") {
		res.Summary = truncateRunes(collapseWhitespace(raw), maxSummaryRunes)
		return res, nil
	}
	if len(raw) > maxDescriptionBytes {
		raw = raw[:maxDescriptionBytes]
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return res, fmt.Errorf("parse description html: %w", err)
	}

	res.Summary = truncateRunes(flattenHTML(doc), maxSummaryRunes)
	res.ImageURLs = mergeImageURLs(res.ImageURLs, markupImageURLs(doc))
	return res, nil
}

// flattenHTML joins the document's text nodes with single spaces, so adjacent
// block elements do not run into each other.
func flattenHTML(doc *goquery.Document) string {
	root := doc.Get(0)
	if root == nil {
		return ""
	}
	var parts []string
	collectText(root, &parts)
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := collapseWhitespace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

func markupImageURLs(doc *goquery.Document) []string {
	var urls []string
	doc.Find("img").Each(func(_ int, node *goquery.Selection) {
		if src, ok := node.Attr("src"); ok {
			if u := strings.TrimSpace(src); u != "" {
				urls = append(urls, u)
			}
		}
	})
	return urls
}

func mergeImageURLs(existing, found []string) []string {
	if len(found) == 0 {
		return existing
	}

	seen := make(map[string]struct{}, len(existing)+len(found))
	merged := make([]string, 0, len(existing)+len(found))
	for _, group := range [][]string{existing, found} {
		for _, u := range group {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			merged = append(merged, u)
		}
	}
	return merged
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
