package app

import (
	"fmt"
	"net/http"
)

// FetchError is returned when a GET does not produce a 2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("fetch %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *FetchError) Unwrap() error {
	if e.Err == nil {
		return ErrUnexpectedStatusCode
	}

	return e.Err
}

// ParseError is returned for malformed sitemap content.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse sitemap %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PolicyError is returned when robots.txt cannot be loaded.
type PolicyError struct {
	URL string
	Err error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("robots policy %s: %v", e.URL, e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}
