// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog is the entry point a web layer calls. It parses
// untrusted request parameters and never returns an error: failures are
// logged and turned into an empty or unfiltered view with a notice.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/labthesis/thesis-engine/internal/corpus"
	"github.com/labthesis/thesis-engine/pkg/types"
)

// Notices shown to the user.
const (
	NoticeNoMatch     = "Matching theses was not found. Try again."
	NoticeNotFound    = "The thesis was not found."
	NoticeUnavailable = "Search is temporarily unavailable."
)

// Corpus is the read side of the thesis store plus access counting.
type Corpus interface {
	Search(ctx context.Context, q types.SearchQuery, page, pageSize int) (types.Page, error)
	Default(ctx context.Context, page, pageSize int) (types.Page, error)
	Get(ctx context.Context, id int64) (types.Thesis, error)
	RecordAccess(ctx context.Context, id int64) error
	Popular(ctx context.Context, n int) ([]types.Thesis, error)
	Labs(ctx context.Context) ([]types.Lab, error)
}

// Recommender ranks theses similar to a thesis.
type Recommender interface {
	MoreLikeThis(ctx context.Context, thesisID int64, page, pageSize int) (types.Page, error)
}

var _ Corpus = (*corpus.Store)(nil)

// Params are the raw search parameters of a request.
type Params struct {
	Keyword string
	Lab     string
	Field   string
	Page    string
}

// View is everything a page needs to render.
type View struct {
	Query   types.SearchQuery `json:"query"`
	Results types.Page        `json:"results"`
	Thesis  *types.Thesis     `json:"thesis,omitempty"`
	Labs    []types.Lab       `json:"labs,omitempty"`
	Popular []types.Thesis    `json:"popular,omitempty"`
	Notices []string          `json:"notices,omitempty"`
}

func (v *View) notice(msg string) {
	v.Notices = append(v.Notices, msg)
}

// Service implements the search, show and recommend requests.
type Service struct {
	corpus       Corpus
	recommender  Recommender
	pageSize     int
	popularCount int
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPageSize sets the listing page size.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithPopularCount sets how many popular theses a view lists.
func WithPopularCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.popularCount = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service.
func New(c Corpus, r Recommender, opts ...Option) *Service {
	s := &Service{
		corpus:       c,
		recommender:  r,
		pageSize:     4,
		popularCount: 5,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParsePage converts an untrusted page number. Anything that is not a
// positive integer means the first page.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// parseLab converts an untrusted lab id. Missing, malformed and unknown ids
// mean no filter.
func parseLab(s string, labs []types.Lab) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return types.NoLab
	}
	for _, l := range labs {
		if l.ID == id {
			return id
		}
	}
	return types.NoLab
}

// Search runs a keyword search. A field outside title/body is reported as
// a notice and the unfiltered listing is shown instead.
func (s *Service) Search(ctx context.Context, p Params) View {
	var v View
	page := ParsePage(p.Page)

	labs, err := s.corpus.Labs(ctx)
	if err != nil {
		s.logger.Error("listing labs", "error", err)
	}
	v.Labs = labs
	v.Popular = s.popular(ctx)

	field, err := types.ParseField(p.Field)
	if err != nil {
		var ve *types.ValidationError
		if errors.As(err, &ve) {
			s.logger.Info("rejected search parameter", "param", ve.Param, "value", ve.Value)
		}
		v.notice(err.Error())
		v.Query = types.SearchQuery{LabID: types.NoLab}
		v.Results, err = s.corpus.Default(ctx, page, s.pageSize)
		if err != nil {
			s.logger.Error("default listing", "error", err)
			v.notice(NoticeUnavailable)
			v.Results = emptyPage(page, s.pageSize)
		}
		return v
	}

	v.Query = types.SearchQuery{
		Keyword: strings.TrimSpace(p.Keyword),
		LabID:   parseLab(p.Lab, labs),
		Field:   field,
	}
	v.Results, err = s.corpus.Search(ctx, v.Query, page, s.pageSize)
	if err != nil {
		s.logger.Error("search", "query", v.Query.Keyword, "error", err)
		v.notice(NoticeUnavailable)
		v.Results = emptyPage(page, s.pageSize)
		return v
	}
	if v.Query.Active() && v.Results.Total == 0 {
		v.notice(NoticeNoMatch)
	}
	return v
}

// Show returns a thesis with one page of similar theses and counts the
// access.
func (s *Service) Show(ctx context.Context, id, page string) View {
	v, thesisID, ok := s.thesisView(ctx, id)
	if !ok {
		return v
	}
	if err := s.corpus.RecordAccess(ctx, thesisID); err != nil {
		s.logger.Warn("recording access", "thesis", thesisID, "error", err)
	}
	v.Thesis.Access++
	v.Results = s.similar(ctx, &v, thesisID, ParsePage(page))
	return v
}

// Recommend returns one page of theses similar to the given thesis.
func (s *Service) Recommend(ctx context.Context, id, page string) View {
	v, thesisID, ok := s.thesisView(ctx, id)
	if !ok {
		return v
	}
	v.Results = s.similar(ctx, &v, thesisID, ParsePage(page))
	return v
}

// Popular lists the most accessed theses.
func (s *Service) Popular(ctx context.Context) View {
	return View{Popular: s.popular(ctx)}
}

func (s *Service) thesisView(ctx context.Context, id string) (View, int64, bool) {
	var v View
	thesisID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		v.notice(NoticeNotFound)
		return v, 0, false
	}
	t, err := s.corpus.Get(ctx, thesisID)
	if err != nil {
		if !errors.Is(err, corpus.ErrNotFound) {
			s.logger.Error("reading thesis", "thesis", thesisID, "error", err)
		}
		v.notice(NoticeNotFound)
		return v, 0, false
	}
	v.Thesis = &t
	return v, thesisID, true
}

func (s *Service) similar(ctx context.Context, v *View, id int64, page int) types.Page {
	if s.recommender == nil {
		return emptyPage(page, s.pageSize)
	}
	p, err := s.recommender.MoreLikeThis(ctx, id, page, s.pageSize)
	if err != nil {
		s.logger.Error("more like this", "thesis", id, "error", err)
		v.notice(NoticeUnavailable)
		return emptyPage(page, s.pageSize)
	}
	return p
}

func (s *Service) popular(ctx context.Context) []types.Thesis {
	theses, err := s.corpus.Popular(ctx, s.popularCount)
	if err != nil {
		s.logger.Error("listing popular theses", "error", err)
		return nil
	}
	return theses
}

func emptyPage(page, pageSize int) types.Page {
	return types.Page{Items: []types.ScoredThesis{}, Page: page, PageSize: pageSize}
}
