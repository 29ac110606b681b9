// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search scrapes the CiNii Articles result list into Article
// records. A query is a list of keywords; each query fetches one result
// page.
package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labthesis/thesis-engine/internal/httputil"
	"github.com/labthesis/thesis-engine/pkg/types"
)

// ciniiSearchBase is the CiNii search endpoint. Declared as a var so tests
// can substitute an httptest server.
var ciniiSearchBase = "http://ci.nii.ac.jp/search"

// Result is the outcome of one query.
type Result struct {
	Query    []string        `json:"query" yaml:"query"`
	URL      string          `json:"url" yaml:"url"`
	Articles []types.Article `json:"articles" yaml:"articles"`
	Skipped  int             `json:"skipped" yaml:"skipped"`
	Skips    []Skip          `json:"skips,omitempty" yaml:"skips,omitempty"`
}

// Client fetches and parses result pages.
type Client struct {
	HTTP   *http.Client
	Cfg    types.ScrapeConfig
	Logger *slog.Logger
}

// NewClient creates a Client with an http.Client using cfg.Timeout.
// Redirects are followed.
func NewClient(cfg types.ScrapeConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Cfg:    cfg,
		Logger: logger,
	}
}

// BuildURL returns the result page URL for keywords. Keywords are trimmed,
// percent-encoded one by one and joined with "+". Empty keywords are dropped.
func BuildURL(base string, keywords []string, cfg types.ScrapeConfig) string {
	var parts []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, url.QueryEscape(k))
		}
	}
	count := cfg.Count
	if count <= 0 {
		count = 100
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("?q=")
	b.WriteString(strings.Join(parts, "+"))
	b.WriteString("&range=" + strconv.Itoa(cfg.Range))
	b.WriteString("&count=" + strconv.Itoa(count))
	b.WriteString("&sortorder=" + strconv.Itoa(cfg.SortOrder))
	b.WriteString("&type=" + strconv.Itoa(cfg.Type))
	return b.String()
}

// Search fetches the result page for keywords and parses it. Network and
// HTTP failures are returned as *FetchError. Malformed items are skipped
// and counted in the result.
func (c *Client) Search(ctx context.Context, keywords []string) (Result, error) {
	base := c.Cfg.BaseURL
	if base == "" {
		base = ciniiSearchBase
	}
	reqURL := BuildURL(base, keywords, c.Cfg)
	res := Result{Query: keywords, URL: reqURL}

	if len(keywords) == 0 || strings.TrimSpace(strings.Join(keywords, "")) == "" {
		return res, &types.ValidationError{Param: "keywords", Value: ""}
	}

	fail := func(status int, err error) (Result, error) {
		return res, &FetchError{Query: keywords, URL: reqURL, Status: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fail(0, fmt.Errorf("creating request: %w", err))
	}
	if c.Cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.Cfg.UserAgent)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.Cfg.MaxRetries)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fail(resp.StatusCode, nil)
	}

	var body io.Reader = resp.Body
	if c.Cfg.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, c.Cfg.MaxBodyBytes)
	}

	sel := c.Cfg.Selectors
	if sel.Item == "" {
		sel = types.CiNiiSelectors
	}
	// resp.Request carries the final URL after redirects.
	articles, skips, err := Parse(body, resp.Request.URL, sel)
	res.Skips = skips
	res.Skipped = len(skips)
	if err != nil {
		return res, fmt.Errorf("parsing %s: %w", reqURL, err)
	}
	for _, s := range skips {
		c.Logger.Warn("skipped malformed result item",
			"query", strings.Join(keywords, " "), "index", s.Index, "reason", s.Reason,
			"selectors", sel.Version)
	}

	res.Articles = articles
	c.Logger.Info("scraped result page",
		"query", strings.Join(keywords, " "), "articles", len(articles), "skipped", len(skips))
	return res, nil
}
