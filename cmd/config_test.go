package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T, flags []string, args []string) (*Config, error) {
	t.Helper()
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags(flags))

	return loadConfig(cmd, args)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadTestConfig(t, nil, []string{"https://example.com"})
	require.NoError(t, err)

	assert.Empty(t, cfg.Sitemaps)
	cfg.Sitemaps = nil
	assert.Equal(t, &Config{
		Site:           "https://example.com",
		UserAgent:      "sitemaptree",
		RobotsMissing:  "fail",
		MaxAgeYears:    2,
		MaxDepth:       10,
		Concurrency:    1,
		IndexDetection: "auto",
		Timeout:        30 * time.Second,
		Format:         "text",
		LogLevel:       "info",
		LogFormat:      "console",
	}, cfg)
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("SITEMAPTREE_SITE", "https://env.example.com")
	t.Setenv("SITEMAPTREE_MAX_DEPTH", "3")
	t.Setenv("SITEMAPTREE_ROBOTS_MISSING", "allow")

	tests := []struct {
		name     string
		flags    []string
		args     []string
		wantSite string
		wantUA   string
		wantAge  int
	}{
		{
			name:     "environment",
			wantSite: "https://env.example.com",
			wantUA:   "sitemaptree",
			wantAge:  2,
		},
		{
			name:     "config file is below environment",
			flags:    []string{"--config", "../.testdata/sitemaptree.yaml"},
			wantSite: "https://env.example.com",
			wantUA:   "sitemaptree-ci",
			wantAge:  5,
		},
		{
			name:     "flag is above environment",
			flags:    []string{"--site", "https://flag.example.com", "--user-agent", "bot"},
			wantSite: "https://flag.example.com",
			wantUA:   "bot",
			wantAge:  2,
		},
		{
			name:     "argument is above everything",
			flags:    []string{"--site", "https://flag.example.com"},
			args:     []string{"https://arg.example.com"},
			wantSite: "https://arg.example.com",
			wantUA:   "sitemaptree",
			wantAge:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadTestConfig(t, tt.flags, tt.args)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSite, cfg.Site)
			assert.Equal(t, tt.wantUA, cfg.UserAgent)
			assert.Equal(t, tt.wantAge, cfg.MaxAgeYears)
			assert.Equal(t, 3, cfg.MaxDepth)
			assert.Equal(t, "allow", cfg.RobotsMissing)
		})
	}
}

func TestLoadConfig_Sitemaps(t *testing.T) {
	cfg, err := loadTestConfig(t, []string{
		"--sitemap", "https://example.com/a.xml",
		"--sitemap", "https://example.com/b.xml",
	}, []string{"https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/a.xml", "https://example.com/b.xml"}, cfg.Sitemaps)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
		args  []string
	}{
		{name: "no site"},
		{name: "relative site", args: []string{"example.com/shop"}},
		{name: "bad sitemap", args: []string{"https://example.com"}, flags: []string{"--sitemap", "not a url"}},
		{name: "robots-missing", args: []string{"https://example.com"}, flags: []string{"--robots-missing", "ignore"}},
		{name: "max-age-years", args: []string{"https://example.com"}, flags: []string{"--max-age-years", "0"}},
		{name: "max-depth", args: []string{"https://example.com"}, flags: []string{"--max-depth", "-1"}},
		{name: "concurrency", args: []string{"https://example.com"}, flags: []string{"--concurrency", "0"}},
		{name: "index-detection", args: []string{"https://example.com"}, flags: []string{"--index-detection", "guess"}},
		{name: "timeout", args: []string{"https://example.com"}, flags: []string{"--timeout", "0s"}},
		{name: "format", args: []string{"https://example.com"}, flags: []string{"--format", "xml"}},
		{name: "log-level", args: []string{"https://example.com"}, flags: []string{"--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadTestConfig(t, tt.flags, tt.args)

			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig_MissingConfigFile(t *testing.T) {
	_, err := loadTestConfig(t, []string{"--config", "../.testdata/does_not_exist.yaml"}, []string{"https://example.com"})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}
