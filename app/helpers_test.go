package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phux/sitemaptree/app"
	"github.com/stretchr/testify/require"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		fmt.Fprintf(&b, "<url><loc>%s</loc></url>", loc)
	}
	b.WriteString(`</urlset>`)

	return b.String()
}

func urlsetWithLastMod(lastMod string, locs ...string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		fmt.Fprintf(&b, "<url><loc>%s</loc><lastmod>%s</lastmod></url>", loc, lastMod)
	}
	b.WriteString(`</urlset>`)

	return b.String()
}

func sitemapIndex(locs ...string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		fmt.Fprintf(&b, "<sitemap><loc>%s</loc></sitemap>", loc)
	}
	b.WriteString(`</sitemapindex>`)

	return b.String()
}

// fakeFetcher serves fixed bodies and answers 404 for anything else.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	delays map[string]time.Duration
	calls  map[string]int
}

func newFakeFetcher(bodies map[string]string) *fakeFetcher {
	return &fakeFetcher{bodies: bodies, calls: map[string]int{}}
}

func (f *fakeFetcher) Get(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	delay := f.delays[url]
	f.mu.Unlock()
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[url]++
	body, ok := f.bodies[url]
	if !ok {
		return "", &app.FetchError{URL: url, StatusCode: 404}
	}

	return body, nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[url]
}

type stubPolicy struct {
	disallowed map[string]bool
	sitemaps   []string
}

func (p stubPolicy) IsAllowed(rawURL string) bool {
	return !p.disallowed[rawURL]
}

func (p stubPolicy) Sitemaps() []string {
	return p.sitemaps
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)

	return string(b)
}
