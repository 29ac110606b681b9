// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Article is one result item scraped from the external academic search
// engine. It lives only for the duration of a scrape call.
type Article struct {
	// Rank is the 1-based position of the item on the result page.
	Rank int `json:"rank" yaml:"rank"`

	// Title is the article title as displayed by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the article authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue holds the journal, volume and year text.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Link is the absolute URL of the article page.
	Link string `json:"link" yaml:"link"`
}

// WellFormed reports whether the article carries the minimum fields a
// consumer can rely on.
func (a Article) WellFormed() bool {
	return a.Title != "" && a.Link != ""
}

// SelectorContract is the versioned set of CSS selectors used to pull
// articles out of a result page. When the source changes its markup the
// contract version changes with it.
type SelectorContract struct {
	Version       string `json:"version" yaml:"version" mapstructure:"version"`
	Container     string `json:"container" yaml:"container" mapstructure:"container"`
	Item          string `json:"item" yaml:"item" mapstructure:"item"`
	Title         string `json:"title" yaml:"title" mapstructure:"title"`
	TitleFallback string `json:"title_fallback" yaml:"title_fallback" mapstructure:"title_fallback"`
	Authors       string `json:"authors" yaml:"authors" mapstructure:"authors"`
	Venue         string `json:"venue" yaml:"venue" mapstructure:"venue"`
}

// CiNiiSelectors is the selector contract of the CiNii Articles result
// list markup.
var CiNiiSelectors = SelectorContract{
	Version:       "cinii-2017",
	Container:     "#itemlistbox",
	Item:          "#itemlistbox > ul > li",
	Title:         ".item_title a",
	TitleFallback: "dt a",
	Authors:       ".item_authordata",
	Venue:         ".item_journal",
}
