package app

type Results struct {
	SitemapURLs    []string       `json:"sitemaps"`
	Discovered     int            `json:"discovered"`
	Allowed        int            `json:"allowed"`
	Recent         int            `json:"recent"`
	RecencyApplied bool           `json:"recencyApplied"`
	UniqueURLs     int            `json:"uniqueUrls"`
	Entries        []SitemapEntry `json:"-"`
	Tree           *Node          `json:"tree"`
}

// URLs returns the URL of every kept entry, duplicates included.
func (r *Results) URLs() []string {
	return entryURLs(r.Entries)
}
