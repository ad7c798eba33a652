/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phux/sitemaptree/app"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd represents the base command when called without any subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemaptree [site-url]",
		Short: "render the sitemap URLs of a site as a path tree",
		Long: `sitemaptree reads robots.txt of a site, resolves every declared sitemap
(following nested sitemap indexes), drops URLs disallowed by robots.txt and,
when every URL has a lastmod, URLs not modified within --max-age-years.
The remaining URLs are printed as a tree of path segments.

The site URL is taken from the argument, --site, SITEMAPTREE_SITE or the
"site" key of sitemaptree.yaml.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	flags := cmd.Flags()
	flags.String("config", "", "[optional] config file (default: ./sitemaptree.yaml or $XDG_CONFIG_HOME/sitemaptree/sitemaptree.yaml)")
	flags.String("site", "", "[required] site URL, robots.txt is read from its root")
	flags.StringSlice("sitemap", nil, "[optional] sitemap URLs to resolve in addition to the ones declared in robots.txt")
	flags.String("user-agent", "sitemaptree", "[optional] user agent sent with requests and matched against robots.txt groups")
	flags.String("robots-missing", string(app.RobotsMissingFail), "[optional] what a 404 on robots.txt means: fail or allow")
	flags.Int("max-age-years", app.DefaultMaxAgeYears, "[optional] drop URLs whose lastmod is older, applied only if every URL has a lastmod")
	flags.Int("max-depth", 10, "[optional] maximum sitemap index nesting, 0 for unbounded")
	flags.Int("concurrency", 1, "[optional] sibling sitemaps fetched in parallel")
	flags.String("index-detection", string(app.IndexDetectionAuto), "[optional] auto (root element, substring fallback) or substring (every entry URL contains \"sitemap\")")
	flags.Duration("timeout", 30*time.Second, "[optional] timeout per request")
	flags.Float64("rate-limit", 0, "[optional] requests per second, 0 for unlimited")
	flags.String("header-file", "", "[optional] JSON file with request headers: {\"global\": {...}, \"hosts\": {\"host\": {...}}}")
	flags.String("format", string(app.FormatText), "[optional] output format: text or json")
	flags.String("baseline", "", "[optional] JSON tree written by an earlier --format json run to diff against")
	flags.String("log-level", "info", "[optional] trace, debug, info, warn, error or disabled")
	flags.String("log-format", "console", "[optional] console or json")
	flags.String("log-file", "", "[optional] also write logs to this file (rotated)")

	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("sitemaptree failed")
	}
}

func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	headers, err := app.LoadHeadersFromFile(cfg.HeaderFile)
	if err != nil {
		return err
	}

	var baseline app.Mapping
	if cfg.Baseline != "" {
		baseline, err = app.LoadBaselineFromFile(cfg.Baseline)
		if err != nil {
			return err
		}
	}

	fetcher := app.NewFetcher(app.FetcherOptions{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Headers:   headers,
		UserAgent: cfg.UserAgent,
	}, logger)

	a := app.NewApp(app.Options{
		SiteURL:       cfg.Site,
		ExtraSitemaps: cfg.Sitemaps,
		UserAgent:     cfg.UserAgent,
		RobotsMissing: app.RobotsMissing(cfg.RobotsMissing),
		MaxAgeYears:   cfg.MaxAgeYears,
		Resolver: app.ResolverOptions{
			MaxDepth:       cfg.MaxDepth,
			Concurrency:    cfg.Concurrency,
			IndexDetection: app.IndexDetection(cfg.IndexDetection),
		},
	}, fetcher, logger)

	results, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}

	reporter := app.NewReporter(cmd.OutOrStdout(), app.Format(cfg.Format))
	if err := reporter.Write(results); err != nil {
		return err
	}

	if baseline != nil {
		return reporter.WriteBaselineDiff(baseline, results.Tree)
	}

	return nil
}
