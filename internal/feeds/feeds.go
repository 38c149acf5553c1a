// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feeds imports RSS and Atom items as curated-insight records.
package feeds

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	xhtml "golang.org/x/net/html"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// DefaultTimeout bounds one feed fetch when the context has no deadline.
var DefaultTimeout = 30 * time.Second

// Options controls how feed items become records.
type Options struct {
	// Type is the record type assigned to every item; it must be in the
	// target catalog's enumeration.
	Type string

	// Topics are added to every record on top of matched item categories.
	Topics []string

	// MaxItems caps the number of items read; 0 means all.
	MaxItems int

	// SuppressAssistant is copied onto every record.
	SuppressAssistant bool

	// UserAgent is sent when fetching.
	UserAgent string
}

// Fetch downloads and converts the feed at url. Item categories are kept only
// when they match one of topics by key or label, case-insensitively.
func Fetch(ctx context.Context, url string, topics []types.TopicOption, opts Options) ([]types.CatalogRecord, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	fp := gofeed.NewParser()
	if opts.UserAgent != "" {
		fp.UserAgent = opts.UserAgent
	}
	feed, err := fp.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", url, err)
	}
	return Convert(feed, topics, opts), nil
}

// Parse reads a feed document from r and converts it.
func Parse(r io.Reader, topics []types.TopicOption, opts Options) ([]types.CatalogRecord, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return Convert(feed, topics, opts), nil
}

// Convert maps feed items to records. Items without a title are skipped, as
// are repeats of a title already seen in the feed.
func Convert(feed *gofeed.Feed, topics []types.TopicOption, opts Options) []types.CatalogRecord {
	items := feed.Items
	if opts.MaxItems > 0 && len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
	}

	seen := make(map[string]bool, len(items))
	out := make([]types.CatalogRecord, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(html.UnescapeString(item.Title))
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true

		r := types.CatalogRecord{
			Title:             title,
			Authors:           authors(item),
			Venue:             strings.TrimSpace(feed.Title),
			Type:              opts.Type,
			Categories:        categories(item.Categories, opts.Topics, topics),
			Abstract:          plainText(firstNonEmpty(item.Description, item.Content)),
			SuppressAssistant: opts.SuppressAssistant,
		}
		if t := published(item); !t.IsZero() {
			r.Date = t.UTC().Format("2006-01-02")
			r.Year = r.Date[:4]
		}
		if item.Link != "" {
			r.Links = []types.Link{{Label: linkLabel(opts.Type), URL: item.Link}}
		}
		out = append(out, r)
	}
	return out
}

// MergeSummary counts the outcome of Merge.
type MergeSummary struct {
	Added   int
	Skipped int
}

// Merge appends records whose titles are not already in c. Progress lines go
// to w.
func Merge(c types.Catalog, records []types.CatalogRecord, w io.Writer) (types.Catalog, MergeSummary) {
	existing := make(map[string]bool, len(c.Records))
	for _, r := range c.Records {
		existing[r.Title] = true
	}

	var summary MergeSummary
	merged := append([]types.CatalogRecord(nil), c.Records...)
	for _, r := range records {
		if existing[r.Title] {
			fmt.Fprintf(w, "skipped %s\n", r.Title)
			summary.Skipped++
			continue
		}
		existing[r.Title] = true
		merged = append(merged, r)
		fmt.Fprintf(w, "added   %s\n", r.Title)
		summary.Added++
	}
	c.Records = merged
	fmt.Fprintf(w, "\nadded: %d, skipped: %d\n", summary.Added, summary.Skipped)
	return c, summary
}

func published(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

func authors(item *gofeed.Item) string {
	var names []string
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 && item.Author != nil {
		names = append(names, item.Author.Name)
	}
	return strings.Join(names, " & ")
}

// categories keeps the item categories that name a known topic, then adds
// the fixed topics, without repeats. Result is never nil.
func categories(itemCats, fixed []string, topics []types.TopicOption) []string {
	out := []string{}
	add := func(k string) {
		for _, have := range out {
			if have == k {
				return
			}
		}
		out = append(out, k)
	}
	for _, raw := range itemCats {
		name := strings.TrimSpace(raw)
		for _, t := range topics {
			if strings.EqualFold(name, t.Key) || strings.EqualFold(name, t.Label) {
				add(t.Key)
				break
			}
		}
	}
	for _, k := range fixed {
		add(k)
	}
	return out
}

func linkLabel(recordType string) string {
	switch recordType {
	case "podcast":
		return "Listen"
	case "article":
		return "Read"
	default:
		return "Link"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// plainText flattens an HTML fragment to whitespace-normalised text.
func plainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	z := xhtml.NewTokenizer(strings.NewReader(fragment))
	var sb strings.Builder
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case xhtml.TextToken:
			sb.Write(z.Text())
			sb.WriteByte(' ')
		}
	}
}
