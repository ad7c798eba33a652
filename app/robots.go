package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"
)

// RobotsMissing decides what a 404 on robots.txt means.
type RobotsMissing string

const (
	RobotsMissingFail  RobotsMissing = "fail"
	RobotsMissingAllow RobotsMissing = "allow"
)

var ErrRobotsMissing = errors.New("robots.txt not found")

// RobotsPolicy answers allow/deny per URL and lists the declared sitemaps.
type RobotsPolicy interface {
	IsAllowed(rawURL string) bool
	Sitemaps() []string
}

type robotsPolicy struct {
	data   *robotstxt.RobotsData
	group  *robotstxt.Group
	origin string
}

// NewRobotsPolicy parses body as the robots.txt of siteURL for the given user agent.
// URLs outside the site origin are never allowed.
func NewRobotsPolicy(siteURL string, statusCode int, body []byte, userAgent string) (RobotsPolicy, error) {
	site, err := url.Parse(siteURL)
	if err != nil {
		return nil, err
	}

	data, err := robotstxt.FromStatusAndBytes(statusCode, body)
	if err != nil {
		return nil, err
	}

	return &robotsPolicy{
		data:   data,
		group:  data.FindGroup(userAgent),
		origin: originOf(site),
	}, nil
}

func (p *robotsPolicy) IsAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || originOf(u) != p.origin {
		return false
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	// no group for this agent (or an allow-all file): nothing is disallowed
	if p.group == nil {
		return true
	}

	return p.group.Test(path)
}

func (p *robotsPolicy) Sitemaps() []string {
	sitemaps := make([]string, 0, len(p.data.Sitemaps))
	for _, s := range p.data.Sitemaps {
		if s = strings.TrimSpace(s); s != "" {
			sitemaps = append(sitemaps, s)
		}
	}

	return sitemaps
}

func originOf(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	switch {
	case port == "" && scheme == "https":
		port = "443"
	case port == "" && scheme == "http":
		port = "80"
	}

	return scheme + "://" + strings.ToLower(u.Hostname()) + ":" + port
}

func RobotsURL(siteURL string) (string, error) {
	site, err := url.Parse(siteURL)
	if err != nil {
		return "", err
	}
	if site.Scheme == "" || site.Host == "" {
		return "", fmt.Errorf("%q: site URL must be absolute", siteURL)
	}

	return site.ResolveReference(&url.URL{Path: "/robots.txt"}).String(), nil
}

// LoadRobots fetches and parses robots.txt. Every failure is a *PolicyError.
func LoadRobots(
	ctx context.Context,
	f fetcher,
	siteURL, userAgent string,
	missing RobotsMissing,
) (RobotsPolicy, error) {
	robotsURL, err := RobotsURL(siteURL)
	if err != nil {
		return nil, &PolicyError{URL: siteURL, Err: err}
	}

	statusCode := http.StatusOK
	body, err := f.Get(ctx, robotsURL)
	if err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusNotFound {
			return nil, &PolicyError{URL: robotsURL, Err: err}
		}
		if missing != RobotsMissingAllow {
			return nil, &PolicyError{URL: robotsURL, Err: ErrRobotsMissing}
		}
		statusCode = http.StatusNotFound
	}

	policy, err := NewRobotsPolicy(siteURL, statusCode, []byte(body), userAgent)
	if err != nil {
		return nil, &PolicyError{URL: robotsURL, Err: err}
	}

	return policy, nil
}
