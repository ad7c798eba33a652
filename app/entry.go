package app

import "time"

// ChangeFreq is the optional <changefreq> hint of a sitemap entry.
type ChangeFreq string

const (
	ChangeFreqAlways  ChangeFreq = "always"
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
	ChangeFreqNever   ChangeFreq = "never"
)

func (c ChangeFreq) valid() bool {
	switch c {
	case "", ChangeFreqAlways, ChangeFreqHourly, ChangeFreqDaily, ChangeFreqWeekly,
		ChangeFreqMonthly, ChangeFreqYearly, ChangeFreqNever:
		return true
	}

	return false
}

// SitemapEntry is one <url> or <sitemap> element of a sitemap document.
type SitemapEntry struct {
	URL        string
	LastMod    *time.Time
	ChangeFreq ChangeFreq
	Priority   *float64
}

func (e SitemapEntry) HasLastMod() bool {
	return e.LastMod != nil
}

func entryURLs(entries []SitemapEntry) []string {
	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		urls = append(urls, entry.URL)
	}

	return urls
}

func countUnique(urls []string) int {
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		seen[u] = struct{}{}
	}

	return len(seen)
}
