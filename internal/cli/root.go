// Package cmd wires a cobra root command around Crawler: resolve a Config
// from flags/env/config-file (viper-mediated precedence), bind the seed
// URL and any whitelist entries, walk the bound origin's declared
// sitemaps, and Get every discovered page, logging one line per outcome.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rohmanhakim/ethicrawl/internal/config"
	"github.com/rohmanhakim/ethicrawl/internal/crawler"
	"github.com/rohmanhakim/ethicrawl/internal/headers"
	"github.com/rohmanhakim/ethicrawl/internal/httpfetch"
	"github.com/rohmanhakim/ethicrawl/internal/resource"
	"github.com/rohmanhakim/ethicrawl/internal/robots/cache"
	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

var (
	cfgFile    string
	seedURL    string
	whitelist  []string
	rateLimit  float64
	jitter     float64
	timeout    time.Duration
	maxDepth   int
	userAgent  string
	logFormat  string
	logLevel   string
	followExt  bool
)

var rootCmd = &cobra.Command{
	Use:   "ethicrawl",
	Short: "A robots-and-sitemap-aware crawler core.",
	Long: `ethicrawl binds a seed origin, optionally whitelists a few more,
walks the seed origin's declared sitemaps, and fetches every discovered
page through a scheduler that enforces robots.txt policy and a single
shared rate limit across the whole run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main; it only needs to happen once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (.json or .yaml)")
	rootCmd.PersistentFlags().StringVar(&seedURL, "seed-url", "", "the root origin to bind and crawl")
	rootCmd.PersistentFlags().StringArrayVar(&whitelist, "whitelist", []string{}, "additional origin to whitelist (repeatable)")
	rootCmd.PersistentFlags().Float64Var(&rateLimit, "rate-limit", 0, "requests per second across the whole crawl")
	rootCmd.PersistentFlags().Float64Var(&jitter, "jitter", 0, "jitter as a fraction of the dispatch interval, [0,1)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-request timeout")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum sitemap index recursion depth")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().BoolVar(&followExt, "follow-external", false, "follow sitemap index entries off the seed's registrable domain")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log output format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, or error")

	viper.BindPFlag("config-file", rootCmd.PersistentFlags().Lookup("config-file"))
	viper.BindPFlag("seed-url", rootCmd.PersistentFlags().Lookup("seed-url"))
	viper.BindPFlag("whitelist", rootCmd.PersistentFlags().Lookup("whitelist"))
	viper.BindPFlag("http.rate_limit", rootCmd.PersistentFlags().Lookup("rate-limit"))
	viper.BindPFlag("http.jitter", rootCmd.PersistentFlags().Lookup("jitter"))
	viper.BindPFlag("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("sitemap.max_depth", rootCmd.PersistentFlags().Lookup("max-depth"))
	viper.BindPFlag("http.user_agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("sitemap.follow_external", rootCmd.PersistentFlags().Lookup("follow-external"))
	viper.BindPFlag("logger.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("logger.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetEnvPrefix("ethicrawl")
	viper.AutomaticEnv()
}

// InitConfig resolves a Config via viper-mediated flag/env/config-file
// precedence, exiting the process on error. seedURL is required unless a
// config file supplies one.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError is InitConfig without the process-exiting behavior,
// for tests exercising error cases.
func InitConfigWithError() (config.Config, error) {
	if file := viper.GetString("config-file"); file != "" {
		return config.WithConfigFile(file)
	}

	seed := viper.GetString("seed-url")
	if seed == "" {
		return config.Config{}, fmt.Errorf("%w: --seed-url is required without --config-file", config.ErrInvalidConfig)
	}
	u, err := urlx.Parse(seed, false)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
	}

	b := config.WithDefault(u)

	if raw := viper.GetStringSlice("whitelist"); len(raw) > 0 {
		entries := make([]urlx.Url, 0, len(raw))
		for _, s := range raw {
			wu, err := urlx.Parse(s, false)
			if err != nil {
				return config.Config{}, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
			}
			entries = append(entries, wu)
		}
		b.WithWhitelist(entries)
	}
	if v := viper.GetFloat64("http.rate_limit"); v > 0 {
		b.WithHTTPRateLimit(v)
	}
	if v := viper.GetFloat64("http.jitter"); v > 0 {
		b.WithHTTPJitter(v)
	}
	if v := viper.GetDuration("http.timeout"); v > 0 {
		b.WithHTTPTimeout(v)
	}
	if v := viper.GetInt("sitemap.max_depth"); v > 0 {
		b.WithSitemapMaxDepth(v)
	}
	if v := viper.GetString("http.user_agent"); v != "" {
		b.WithHTTPUserAgent(v)
	}
	if viper.GetBool("sitemap.follow_external") {
		b.WithSitemapFollowExternal(true)
	}
	if v := viper.GetString("logger.format"); v != "" {
		b.WithLoggerFormat(v)
	}
	if v := viper.GetString("logger.level"); v != "" {
		b.WithLoggerLevel(v)
	}

	return b.Build()
}

// newLogger builds the root *slog.Logger per cfg's logger.* options.
func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LoggerLevel()) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.LoggerFormat(), "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func run(ctx context.Context) error {
	cfg := InitConfig()
	logger := newLogger(cfg)

	fetchClient := httpfetch.NewClient(
		cfg.HTTPUserAgent(),
		httpfetch.WithDefaultHeaders(cfg.HTTPHeaders()),
		httpfetch.WithProxy(proxyFunc(cfg)),
	)
	defer fetchClient.Close()

	c := crawler.New(
		fetchClient,
		cfg.HTTPUserAgent(),
		cfg.HTTPRateLimit(),
		cfg.JitterDuration(),
		cfg.SitemapMaxDepth(),
		cfg.SitemapFollowExternal(),
		cache.NewMemoryCache(),
		logger,
	)

	if err := c.Bind(ctx, resource.New(cfg.SeedURL()), nil); err != nil {
		return fmt.Errorf("bind failed: %w", err)
	}
	defer c.Unbind()

	for _, w := range cfg.Whitelist() {
		if err := c.Whitelist(ctx, resource.New(w), nil); err != nil {
			logger.Warn("whitelist failed", "origin", w.String(), "error", err)
		}
	}

	policy, err := c.Robots()
	if err != nil {
		return fmt.Errorf("robots lookup failed: %w", err)
	}
	parser, err := c.Sitemaps()
	if err != nil {
		return fmt.Errorf("sitemap lookup failed: %w", err)
	}

	entries := parser.Parse(ctx, policy.DeclaredSitemaps())
	logger.Info("sitemap traversal complete", "crawl_id", c.CrawlID(), "entries", len(entries))

	hdrs := headers.New()
	for _, e := range entries {
		resp, err := c.Get(ctx, resource.New(e.Loc), hdrs)
		if err != nil {
			logger.Warn("fetch failed", "url", e.Loc.String(), "error", err)
			continue
		}
		logger.Info("fetched", "url", e.Loc.String(), "status", resp.Status())
	}

	return nil
}

func proxyFunc(cfg config.Config) func(*http.Request) (*url.URL, error) {
	if cfg.HTTPProxyHTTP() == "" && cfg.HTTPProxyHTTPS() == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		switch req.URL.Scheme {
		case "https":
			if cfg.HTTPProxyHTTPS() != "" {
				return url.Parse(cfg.HTTPProxyHTTPS())
			}
		default:
			if cfg.HTTPProxyHTTP() != "" {
				return url.Parse(cfg.HTTPProxyHTTP())
			}
		}
		return http.ProxyFromEnvironment(req)
	}
}

func ResetFlags() {
	cfgFile = ""
	seedURL = ""
	whitelist = []string{}
	rateLimit = 0
	jitter = 0
	timeout = 0
	maxDepth = 0
	userAgent = ""
	followExt = false
	logFormat = ""
	logLevel = ""
	viper.Reset()
}

// Test helper functions to set flag/viper state from tests.
func SetConfigFileForTest(path string) { viper.Set("config-file", path) }
func SetSeedURLForTest(url string)     { viper.Set("seed-url", url) }
func SetWhitelistForTest(urls []string) { viper.Set("whitelist", urls) }
func SetRateLimitForTest(rate float64)  { viper.Set("http.rate_limit", rate) }
func SetJitterForTest(fraction float64) { viper.Set("http.jitter", fraction) }
func SetTimeoutForTest(t time.Duration) { viper.Set("http.timeout", t) }
func SetMaxDepthForTest(depth int)      { viper.Set("sitemap.max_depth", depth) }
func SetUserAgentForTest(agent string)  { viper.Set("http.user_agent", agent) }
func SetFollowExternalForTest(follow bool) { viper.Set("sitemap.follow_external", follow) }
func SetLogFormatForTest(format string) { viper.Set("logger.format", format) }
func SetLogLevelForTest(level string)   { viper.Set("logger.level", level) }
