package app

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	valid "github.com/asaskevich/govalidator"
	"golang.org/x/net/html/charset"
)

var (
	ErrInvalidLoc        = errors.New("invalid loc")
	ErrInvalidLastMod    = errors.New("invalid lastmod")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidChangeFreq = errors.New("invalid changefreq")
	ErrNotSitemap        = errors.New("not a sitemap document")
)

// DocumentKind is taken from the root element of a sitemap file.
type DocumentKind int

const (
	DocumentUnknown DocumentKind = iota
	DocumentIndex
	DocumentURLSet
)

func (k DocumentKind) String() string {
	switch k {
	case DocumentIndex:
		return "sitemapindex"
	case DocumentURLSet:
		return "urlset"
	default:
		return "unknown"
	}
}

type Document struct {
	Kind    DocumentKind
	Root    string
	Entries []SitemapEntry
}

type xmlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// W3C datetime profiles, plus the zoneless variants seen in the wild.
var lastModLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

var xmlDeclaration = regexp.MustCompile(`<\?xml.*?\?>`)

// StripXMLDeclaration removes the first <?xml ... ?> prologue.
func StripXMLDeclaration(text string) string {
	loc := xmlDeclaration.FindStringIndex(text)
	if loc == nil {
		return text
	}

	return text[:loc[0]] + text[loc[1]:]
}

type SitemapParser struct{}

func NewSitemapParser() SitemapParser {
	return SitemapParser{}
}

// ParseSitemap reads <url> and <sitemap> children of the root element.
// An empty or whitespace-only input yields an empty document of unknown kind.
// Text outside the root element, or an unknown root without entries, is
// ErrNotSitemap.
func (p SitemapParser) ParseSitemap(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Document{Entries: []SitemapEntry{}}
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if depth > 0 {
				return nil, fmt.Errorf("unexpected end of document inside <%s>", doc.Root)
			}

			return doc, nil
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.CharData:
			if depth == 0 && !isBlank(el) {
				return nil, fmt.Errorf("text outside the root element: %w", ErrNotSitemap)
			}
		case xml.StartElement:
			if depth == 0 {
				doc.Root = el.Name.Local
				doc.Kind = kindOf(el.Name.Local)
				depth++

				continue
			}

			if el.Name.Local != "url" && el.Name.Local != "sitemap" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}

				continue
			}

			var raw xmlEntry
			if err := dec.DecodeElement(&raw, &el); err != nil {
				return nil, err
			}

			entry, err := p.toEntry(raw)
			if err != nil {
				return nil, err
			}
			doc.Entries = append(doc.Entries, entry)
		case xml.EndElement:
			depth--
			if depth == 0 {
				if doc.Kind == DocumentUnknown && len(doc.Entries) == 0 {
					return nil, fmt.Errorf("<%s> without entries: %w", doc.Root, ErrNotSitemap)
				}

				return doc, nil
			}
		}
	}
}

func isBlank(text []byte) bool {
	return len(bytes.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})) == 0
}

func kindOf(root string) DocumentKind {
	switch strings.ToLower(root) {
	case "sitemapindex":
		return DocumentIndex
	case "urlset":
		return DocumentURLSet
	default:
		return DocumentUnknown
	}
}

func (SitemapParser) toEntry(raw xmlEntry) (SitemapEntry, error) {
	loc := strings.TrimSpace(raw.Loc)
	if !valid.IsRequestURL(loc) {
		return SitemapEntry{}, fmt.Errorf("%q: %w", loc, ErrInvalidLoc)
	}

	entry := SitemapEntry{
		URL:        loc,
		ChangeFreq: ChangeFreq(strings.ToLower(strings.TrimSpace(raw.ChangeFreq))),
	}

	if !entry.ChangeFreq.valid() {
		return SitemapEntry{}, fmt.Errorf("%s: %q: %w", loc, raw.ChangeFreq, ErrInvalidChangeFreq)
	}

	if lastMod := strings.TrimSpace(raw.LastMod); lastMod != "" {
		t, err := parseLastMod(lastMod)
		if err != nil {
			return SitemapEntry{}, fmt.Errorf("%s: %q: %w", loc, lastMod, err)
		}
		entry.LastMod = &t
	}

	if priority := strings.TrimSpace(raw.Priority); priority != "" {
		f, err := strconv.ParseFloat(priority, 64)
		if err != nil || f < 0 || f > 1 {
			return SitemapEntry{}, fmt.Errorf("%s: %q: %w", loc, priority, ErrInvalidPriority)
		}
		entry.Priority = &f
	}

	return entry, nil
}

func parseLastMod(value string) (time.Time, error) {
	for _, layout := range lastModLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidLastMod
}
