package app_test

import (
	"testing"
	"time"

	"github.com/phux/sitemaptree/app"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func timePointer(t time.Time) *time.Time {
	return &t
}

func entry(url string, lastMod *time.Time) app.SitemapEntry {
	return app.SitemapEntry{URL: url, LastMod: lastMod}
}

func TestRelevanceFilter_Filter(t *testing.T) {
	t.Parallel()
	cutoff := fixedNow.AddDate(-2, 0, 0)
	recent := timePointer(fixedNow.AddDate(0, -1, 0))
	old := timePointer(fixedNow.AddDate(-3, 0, 0))

	tests := []struct {
		name               string
		entries            []app.SitemapEntry
		disallowed         map[string]bool
		wantURLs           []string
		wantAllowed        int
		wantRecencyApplied bool
	}{
		{
			name:               "no entries",
			entries:            []app.SitemapEntry{},
			wantURLs:           []string{},
			wantRecencyApplied: true,
		},
		{
			name: "disallowed entries are removed",
			entries: []app.SitemapEntry{
				entry("https://example.com/a", recent),
				entry("https://example.com/checkout/cart", recent),
			},
			disallowed:         map[string]bool{"https://example.com/checkout/cart": true},
			wantURLs:           []string{"https://example.com/a"},
			wantAllowed:        1,
			wantRecencyApplied: true,
		},
		{
			name: "one entry without lastmod disables recency filtering",
			entries: []app.SitemapEntry{
				entry("https://example.com/old", old),
				entry("https://example.com/undated", nil),
			},
			wantURLs:    []string{"https://example.com/old", "https://example.com/undated"},
			wantAllowed: 2,
		},
		{
			name: "undated entry removed by policy re-enables recency filtering",
			entries: []app.SitemapEntry{
				entry("https://example.com/old", old),
				entry("https://example.com/new", recent),
				entry("https://example.com/private", nil),
			},
			disallowed:         map[string]bool{"https://example.com/private": true},
			wantURLs:           []string{"https://example.com/new"},
			wantAllowed:        2,
			wantRecencyApplied: true,
		},
		{
			name: "entries exactly at the cutoff are excluded",
			entries: []app.SitemapEntry{
				entry("https://example.com/edge", timePointer(cutoff)),
				entry("https://example.com/after", timePointer(cutoff.Add(time.Second))),
				entry("https://example.com/before", timePointer(cutoff.Add(-time.Second))),
			},
			wantURLs:           []string{"https://example.com/after"},
			wantAllowed:        3,
			wantRecencyApplied: true,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := app.NewRelevanceFilter(2, func() time.Time { return fixedNow }, zerolog.Nop())

			got := f.Filter(tt.entries, stubPolicy{disallowed: tt.disallowed})

			urls := []string{}
			for _, e := range got.Entries {
				urls = append(urls, e.URL)
			}
			assert.Equal(t, tt.wantURLs, urls)
			assert.Equal(t, len(tt.entries), got.Discovered)
			assert.Equal(t, tt.wantAllowed, got.Allowed)
			assert.Equal(t, tt.wantRecencyApplied, got.RecencyApplied)
		})
	}
}

func TestRelevanceFilter_Filter_OutputIsRecent(t *testing.T) {
	t.Parallel()
	cutoff := fixedNow.AddDate(-2, 0, 0)
	entries := []app.SitemapEntry{}
	for months := 0; months < 48; months++ {
		entries = append(entries, entry("https://example.com/p", timePointer(fixedNow.AddDate(0, -months, 0))))
	}

	got := app.NewRelevanceFilter(0, func() time.Time { return fixedNow }, zerolog.Nop()).
		Filter(entries, stubPolicy{})

	assert.True(t, got.RecencyApplied)
	assert.Len(t, got.Entries, 24)
	for _, e := range got.Entries {
		assert.True(t, e.LastMod.After(cutoff))
	}
}
