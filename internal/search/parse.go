// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/labthesis/thesis-engine/pkg/types"
)

// Parse extracts articles from a result page using the selector contract.
// Articles are ranked 1..n in document order; items without a title or
// link are skipped and reported with their 1-based item position. A page
// without the result container, or whose items are all malformed, yields
// ErrSourceFormatChanged along with the skips. An empty list is simply no
// results.
func Parse(r io.Reader, pageURL *url.URL, sel types.SelectorContract) ([]types.Article, []Skip, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading HTML: %w", err)
	}
	if doc.Find(sel.Container).Length() == 0 {
		return nil, nil, fmt.Errorf("%w: no %q (selectors %s)", ErrSourceFormatChanged, sel.Container, sel.Version)
	}

	articles := make([]types.Article, 0)
	var skips []Skip
	doc.Find(sel.Item).Each(func(i int, item *goquery.Selection) {
		a, reason := parseItem(item, pageURL, sel)
		if reason != "" {
			skips = append(skips, Skip{Index: i + 1, Reason: reason})
			return
		}
		a.Rank = len(articles) + 1
		articles = append(articles, a)
	})
	if len(articles) == 0 && len(skips) > 0 {
		return articles, skips, fmt.Errorf("%w: all %d items malformed (selectors %s)",
			ErrSourceFormatChanged, len(skips), sel.Version)
	}
	return articles, skips, nil
}

func parseItem(item *goquery.Selection, pageURL *url.URL, sel types.SelectorContract) (types.Article, string) {
	anchor := item.Find(sel.Title).First()
	if anchor.Length() == 0 && sel.TitleFallback != "" {
		anchor = item.Find(sel.TitleFallback).First()
	}
	title := collapse(anchor.Text())
	if title == "" {
		return types.Article{}, "missing title"
	}
	href, _ := anchor.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return types.Article{}, "missing link"
	}
	link, err := url.Parse(href)
	if err != nil {
		return types.Article{}, fmt.Sprintf("bad link %q", href)
	}
	if pageURL != nil {
		link = pageURL.ResolveReference(link)
	}

	a := types.Article{Title: title, Link: link.String()}
	item.Find(sel.Authors).Each(func(_ int, s *goquery.Selection) {
		a.Authors = append(a.Authors, splitAuthors(s.Text())...)
	})
	if sel.Venue != "" {
		a.Venue = collapse(item.Find(sel.Venue).First().Text())
	}
	return a, ""
}

// splitAuthors splits an author line on the separators CiNii uses.
func splitAuthors(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '、' || r == '，' || r == ';' || r == '\n'
	})
	var out []string
	for _, f := range fields {
		if f = collapse(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
