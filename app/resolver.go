package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	ErrSitemapCycle     = errors.New("sitemap index cycle")
	ErrMaxDepthExceeded = errors.New("sitemap index nesting too deep")
)

// IndexDetection selects how a parsed document is classified as a sitemap index.
type IndexDetection string

const (
	// IndexDetectionAuto trusts the root element and falls back to
	// IndexDetectionSubstring when it is neither <sitemapindex> nor <urlset>.
	IndexDetectionAuto IndexDetection = "auto"
	// IndexDetectionSubstring treats a document as an index when every entry
	// URL contains "sitemap". Leaf URLs with "sitemap" in their path are
	// misclassified by this rule.
	IndexDetectionSubstring IndexDetection = "substring"
)

type fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

type sitemapParser interface {
	ParseSitemap(io.Reader) (*Document, error)
}

type ResolverOptions struct {
	MaxDepth       int // <= 0 means unbounded
	Concurrency    int // sitemaps fetched at once, <= 1 is one at a time
	IndexDetection IndexDetection
}

// Resolver flattens sitemap indexes into their leaf entries. It remembers
// every sitemap it fetched, so use one Resolver per run.
//
// Documents are loaded at most once per URL, in parallel with Concurrency > 1.
// The walk over them is always sequential and depth-first, so cycles, skips
// and entry order do not depend on Concurrency.
type Resolver struct {
	fetcher fetcher
	parser  sitemapParser
	opts    ResolverOptions
	logger  zerolog.Logger
	sem     *semaphore.Weighted

	mu    sync.Mutex
	loads map[string]*load

	// walk state, only touched by the resolving goroutine
	visited map[string]struct{}
}

// load is a fetched and parsed sitemap, shared by everyone asking for its URL.
type load struct {
	done chan struct{}
	doc  *Document
	err  error
}

func NewResolver(f fetcher, p sitemapParser, opts ResolverOptions, logger zerolog.Logger) *Resolver {
	if opts.IndexDetection == "" {
		opts.IndexDetection = IndexDetectionAuto
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Resolver{
		fetcher: f,
		parser:  p,
		opts:    opts,
		logger:  logger,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		loads:   map[string]*load{},
		visited: map[string]struct{}{},
	}
}

// Resolve returns the leaf entries reachable from sitemapURL. Index entries
// themselves are never part of the result. A sitemap already resolved by this
// Resolver contributes nothing.
func (r *Resolver) Resolve(ctx context.Context, sitemapURL string) ([]SitemapEntry, error) {
	return r.resolve(ctx, sitemapURL, nil)
}

// ResolveAll resolves every URL in order and concatenates the results.
func (r *Resolver) ResolveAll(ctx context.Context, sitemapURLs []string) ([]SitemapEntry, error) {
	return r.resolveAll(ctx, sitemapURLs, nil)
}

func (r *Resolver) resolve(ctx context.Context, sitemapURL string, ancestors []string) ([]SitemapEntry, error) {
	key := visitKey(sitemapURL)
	for _, ancestor := range ancestors {
		if ancestor == key {
			return nil, fmt.Errorf("%s: %w", sitemapURL, ErrSitemapCycle)
		}
	}

	if r.tooDeep(ancestors) {
		return nil, fmt.Errorf("%s: depth %d: %w", sitemapURL, len(ancestors), ErrMaxDepthExceeded)
	}

	if _, ok := r.visited[key]; ok {
		r.logger.Debug().Str("url", sitemapURL).Msg("Sitemap already resolved, skipping")

		return nil, nil
	}
	r.visited[key] = struct{}{}

	doc, err := r.load(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	if !r.isIndex(doc) {
		return doc.Entries, nil
	}

	r.logger.Debug().
		Str("url", sitemapURL).
		Int("sitemaps", len(doc.Entries)).
		Msg("Sitemap index")

	path := append(ancestors[:len(ancestors):len(ancestors)], key)

	return r.resolveAll(ctx, entryURLs(doc.Entries), path)
}

func (r *Resolver) resolveAll(ctx context.Context, urls []string, ancestors []string) ([]SitemapEntry, error) {
	ctx, cancel := context.WithCancel(ctx)
	wait := r.prefetch(ctx, urls, ancestors)
	defer func() {
		cancel()
		wait()
	}()

	entries := []SitemapEntry{}
	for _, u := range urls {
		nested, err := r.resolve(ctx, u, ancestors)
		if err != nil {
			return nil, err
		}
		entries = append(entries, nested...)
	}

	return entries, nil
}

// prefetch starts loading urls in the background. The returned func waits
// for every started load.
func (r *Resolver) prefetch(ctx context.Context, urls []string, ancestors []string) func() {
	if r.opts.Concurrency <= 1 || r.tooDeep(ancestors) {
		return func() {}
	}

	var g errgroup.Group
	for _, u := range urls {
		u := u
		g.Go(func() error {
			_, _ = r.load(ctx, u)

			return nil
		})
	}

	return func() { _ = g.Wait() }
}

func (r *Resolver) tooDeep(ancestors []string) bool {
	return r.opts.MaxDepth > 0 && len(ancestors) > r.opts.MaxDepth
}

// load fetches and parses sitemapURL once. Later callers wait for the first.
func (r *Resolver) load(ctx context.Context, sitemapURL string) (*Document, error) {
	key := visitKey(sitemapURL)

	r.mu.Lock()
	l, ok := r.loads[key]
	if !ok {
		l = &load{done: make(chan struct{})}
		r.loads[key] = l
	}
	r.mu.Unlock()

	if ok {
		select {
		case <-l.done:
			return l.doc, l.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	l.doc, l.err = r.fetchDocument(ctx, sitemapURL)
	close(l.done)

	return l.doc, l.err
}

func (r *Resolver) fetchDocument(ctx context.Context, sitemapURL string) (*Document, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	r.logger.Info().Str("url", sitemapURL).Msg("Fetching sitemap")
	text, err := r.fetcher.Get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	doc, err := r.parser.ParseSitemap(strings.NewReader(StripXMLDeclaration(text)))
	if err != nil {
		return nil, &ParseError{URL: sitemapURL, Err: err}
	}

	return doc, nil
}

func (r *Resolver) isIndex(doc *Document) bool {
	if r.opts.IndexDetection == IndexDetectionSubstring {
		return allMentionSitemap(doc.Entries)
	}

	switch doc.Kind {
	case DocumentIndex:
		return true
	case DocumentURLSet:
		return false
	default:
		return allMentionSitemap(doc.Entries)
	}
}

func allMentionSitemap(entries []SitemapEntry) bool {
	if len(entries) == 0 {
		return false
	}

	for _, entry := range entries {
		if !strings.Contains(entry.URL, "sitemap") {
			return false
		}
	}

	return true
}

func visitKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}
