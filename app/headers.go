package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// Headers are added to every robots.txt and sitemap request. Host entries
// override global ones for requests to that host.
type Headers struct {
	Global HeaderKV            `json:"global"`
	Hosts  map[string]HeaderKV `json:"hosts"`
}

type HeaderKV map[string]string

func LoadHeadersFromFile(path string) (Headers, error) {
	if path == "" {
		return Headers{}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Headers{}, err
	}

	var headers Headers
	if err := json.Unmarshal(content, &headers); err != nil {
		return Headers{}, fmt.Errorf("cannot unmarshal %s file: %w", path, err)
	}

	return headers, nil
}

func (h Headers) apply(req *http.Request) {
	for key, value := range h.Global {
		req.Header.Set(key, value)
	}

	for key, value := range h.Hosts[req.URL.Hostname()] {
		req.Header.Set(key, value)
	}
}
