package app

import (
	"time"

	"github.com/rs/zerolog"
)

const DefaultMaxAgeYears = 2

type FilterResult struct {
	Entries        []SitemapEntry
	Discovered     int
	Allowed        int
	RecencyApplied bool
}

// RelevanceFilter drops entries robots.txt disallows and, when every allowed
// entry carries a lastmod, entries not modified within the last MaxAgeYears.
type RelevanceFilter struct {
	maxAgeYears int
	now         func() time.Time
	logger      zerolog.Logger
}

func NewRelevanceFilter(maxAgeYears int, now func() time.Time, logger zerolog.Logger) *RelevanceFilter {
	if maxAgeYears <= 0 {
		maxAgeYears = DefaultMaxAgeYears
	}
	if now == nil {
		now = time.Now
	}

	return &RelevanceFilter{
		maxAgeYears: maxAgeYears,
		now:         now,
		logger:      logger,
	}
}

func (f *RelevanceFilter) Filter(entries []SitemapEntry, policy RobotsPolicy) FilterResult {
	f.logger.Info().Int("entries", len(entries)).Msg("Starting with discovered sitemap entries")

	allowed := make([]SitemapEntry, 0, len(entries))
	for _, entry := range entries {
		if policy.IsAllowed(entry.URL) {
			allowed = append(allowed, entry)
		}
	}

	f.logger.Info().
		Int("entries", len(allowed)).
		Int("removed", len(entries)-len(allowed)).
		Msg("Removed entries disallowed by robots.txt")

	result := FilterResult{
		Entries:    allowed,
		Discovered: len(entries),
		Allowed:    len(allowed),
	}

	// partial lastmod coverage is not trusted: filter all or nothing
	for _, entry := range allowed {
		if !entry.HasLastMod() {
			return result
		}
	}

	cutoff := f.now().AddDate(-f.maxAgeYears, 0, 0)
	recent := make([]SitemapEntry, 0, len(allowed))
	for _, entry := range allowed {
		if entry.LastMod.After(cutoff) {
			recent = append(recent, entry)
		}
	}

	f.logger.Info().
		Int("entries", len(recent)).
		Time("cutoff", cutoff).
		Msg("Reduced to recently modified entries")

	result.Entries = recent
	result.RecencyApplied = true

	return result
}
