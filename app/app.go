package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrNoSiteURL            = errors.New("no site URL defined")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
)

type Options struct {
	SiteURL       string
	ExtraSitemaps []string
	UserAgent     string
	RobotsMissing RobotsMissing
	MaxAgeYears   int
	Resolver      ResolverOptions
	Now           func() time.Time
}

type App struct {
	opts      Options
	fetcher   fetcher
	parser    sitemapParser
	urlParser segmenter
	logger    zerolog.Logger
}

func NewApp(opts Options, fetcher fetcher, logger zerolog.Logger) *App {
	if opts.RobotsMissing == "" {
		opts.RobotsMissing = RobotsMissingFail
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "*"
	}

	return &App{
		opts:      opts,
		fetcher:   fetcher,
		parser:    NewSitemapParser(),
		urlParser: NewURLParser(),
		logger:    logger,
	}
}

// Run executes robots → sitemaps → filter → tree once. The first failure of
// any stage aborts the run.
func (a *App) Run(ctx context.Context) (*Results, error) {
	if a.opts.SiteURL == "" {
		return nil, ErrNoSiteURL
	}

	policy, err := LoadRobots(ctx, a.fetcher, a.opts.SiteURL, a.opts.UserAgent, a.opts.RobotsMissing)
	if err != nil {
		return nil, fmt.Errorf("robots: %w", err)
	}

	sitemapURLs := mergeSitemapURLs(policy.Sitemaps(), a.opts.ExtraSitemaps)
	a.logger.Info().
		Str("site", a.opts.SiteURL).
		Int("sitemaps", len(sitemapURLs)).
		Msg("Loaded robots.txt")

	resolver := NewResolver(a.fetcher, a.parser, a.opts.Resolver, a.logger)
	entries, err := resolver.ResolveAll(ctx, sitemapURLs)
	if err != nil {
		return nil, fmt.Errorf("resolve sitemaps: %w", err)
	}

	filtered := NewRelevanceFilter(a.opts.MaxAgeYears, a.opts.Now, a.logger).Filter(entries, policy)

	results := &Results{
		SitemapURLs:    sitemapURLs,
		Discovered:     filtered.Discovered,
		Allowed:        filtered.Allowed,
		Recent:         len(filtered.Entries),
		RecencyApplied: filtered.RecencyApplied,
		Entries:        filtered.Entries,
	}
	urls := results.URLs()
	results.UniqueURLs = countUnique(urls)
	results.Tree = NewTreeBuilder(a.urlParser).Build(urls)

	a.logger.Info().Int("urls", results.UniqueURLs).Msg("Found unique URLs")

	return results, nil
}

func mergeSitemapURLs(declared, extra []string) []string {
	merged := make([]string, 0, len(declared)+len(extra))
	seen := map[string]struct{}{}
	for _, u := range append(declared[:len(declared):len(declared)], extra...) {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		merged = append(merged, u)
	}

	return merged
}
