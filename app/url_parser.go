package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	valid "github.com/asaskevich/govalidator"
)

var errParserInvalidURL = errors.New("not an absolute URL")

type Parser struct{}

func NewURLParser() Parser {
	return Parser{}
}

// Segments splits the escaped path of rawURL on "/" and drops empty parts,
// so "/a//b/" yields ["a", "b"].
func (p Parser) Segments(rawURL string) ([]string, error) {
	if !valid.IsRequestURL(rawURL) {
		return []string{}, fmt.Errorf("Segments: %q: %w", rawURL, errParserInvalidURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return []string{}, fmt.Errorf("Segments: %w", err)
	}

	return splitPath(u.EscapedPath()), nil
}

func splitPath(path string) []string {
	segments := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}

	return segments
}
