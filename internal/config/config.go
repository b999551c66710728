// Package config builds the immutable Config value every entry point
// (library embedder or the cmd/ethicrawl CLI) threads through Crawler.New.
// Construction always goes through WithDefault(...).With*(...).Build(), or
// WithConfigFile for file-backed overlays; there is no exported zero-value
// constructor, so a Config in hand has already passed Build's validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rohmanhakim/ethicrawl/internal/headers"
	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

// Config is the full option surface consumed by Crawler.New and its default
// Fetcher/logger: http.* transport settings, sitemap.* traversal settings,
// logger.* handler settings, and the seed/whitelist origins themselves.
type Config struct {
	//===============
	// Crawl scope
	//===============
	seedURL   urlx.Url
	whitelist []urlx.Url

	//===============
	// http.*
	//===============
	httpUserAgent  string
	httpTimeout    time.Duration
	httpRateLimit  float64
	httpJitter     float64 // fraction of the dispatch interval, [0,1)
	httpHeaders    *headers.Headers
	httpProxyHTTP  string
	httpProxyHTTPS string

	//===============
	// sitemap.*
	//===============
	sitemapMaxDepth       int
	sitemapFollowExternal bool
	sitemapValidateURLs   bool

	//===============
	// logger.*
	//===============
	loggerLevel           string
	loggerComponentLevels map[string]string
	loggerFileEnabled     bool
	loggerFilePath        string
	loggerUseColors       bool
	loggerFormat          string
}

// configDTO mirrors Config's dotted option groups for file-based loading.
// Zero values mean "not set in this file" and are never applied over
// WithDefault's defaults — the merge-only-non-zero-fields discipline
// newConfigFromDTO follows.
type configDTO struct {
	SeedURL   string   `json:"seedUrl" yaml:"seedUrl"`
	Whitelist []string `json:"whitelist,omitempty" yaml:"whitelist,omitempty"`

	HTTP struct {
		UserAgent string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
		Timeout   float64           `json:"timeout,omitempty" yaml:"timeout,omitempty"`
		RateLimit float64           `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
		Jitter    float64           `json:"jitter,omitempty" yaml:"jitter,omitempty"`
		Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
		Proxies   struct {
			HTTP  string `json:"http,omitempty" yaml:"http,omitempty"`
			HTTPS string `json:"https,omitempty" yaml:"https,omitempty"`
		} `json:"proxies,omitempty" yaml:"proxies,omitempty"`
	} `json:"http,omitempty" yaml:"http,omitempty"`

	Sitemap struct {
		MaxDepth       int   `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
		FollowExternal bool  `json:"follow_external,omitempty" yaml:"follow_external,omitempty"`
		ValidateUrls   *bool `json:"validate_urls,omitempty" yaml:"validate_urls,omitempty"`
	} `json:"sitemap,omitempty" yaml:"sitemap,omitempty"`

	Logger struct {
		Level           string            `json:"level,omitempty" yaml:"level,omitempty"`
		ComponentLevels map[string]string `json:"component_levels,omitempty" yaml:"component_levels,omitempty"`
		FileEnabled     bool              `json:"file_enabled,omitempty" yaml:"file_enabled,omitempty"`
		FilePath        string            `json:"file_path,omitempty" yaml:"file_path,omitempty"`
		UseColors       bool              `json:"use_colors,omitempty" yaml:"use_colors,omitempty"`
		Format          string            `json:"format,omitempty" yaml:"format,omitempty"`
	} `json:"logger,omitempty" yaml:"logger,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	if dto.SeedURL == "" {
		return Config{}, fmt.Errorf("%w: seedUrl cannot be empty", ErrInvalidConfig)
	}
	seed, err := urlx.Parse(dto.SeedURL, false)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}

	b := WithDefault(seed)

	if len(dto.Whitelist) > 0 {
		whitelist := make([]urlx.Url, 0, len(dto.Whitelist))
		for _, s := range dto.Whitelist {
			u, err := urlx.Parse(s, false)
			if err != nil {
				return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
			}
			whitelist = append(whitelist, u)
		}
		b.WithWhitelist(whitelist)
	}

	if dto.HTTP.UserAgent != "" {
		b.WithHTTPUserAgent(dto.HTTP.UserAgent)
	}
	if dto.HTTP.Timeout != 0 {
		b.WithHTTPTimeout(time.Duration(dto.HTTP.Timeout * float64(time.Second)))
	}
	if dto.HTTP.RateLimit != 0 {
		b.WithHTTPRateLimit(dto.HTTP.RateLimit)
	}
	if dto.HTTP.Jitter != 0 {
		b.WithHTTPJitter(dto.HTTP.Jitter)
	}
	if len(dto.HTTP.Headers) > 0 {
		b.WithHTTPHeaders(headers.New(dto.HTTP.Headers))
	}
	if dto.HTTP.Proxies.HTTP != "" {
		b.WithHTTPProxyHTTP(dto.HTTP.Proxies.HTTP)
	}
	if dto.HTTP.Proxies.HTTPS != "" {
		b.WithHTTPProxyHTTPS(dto.HTTP.Proxies.HTTPS)
	}

	if dto.Sitemap.MaxDepth != 0 {
		b.WithSitemapMaxDepth(dto.Sitemap.MaxDepth)
	}
	// FollowExternal's zero value (false) is also its default, so it is
	// applied unconditionally rather than treated as "absent".
	b.WithSitemapFollowExternal(dto.Sitemap.FollowExternal)
	if dto.Sitemap.ValidateUrls != nil {
		b.WithSitemapValidateURLs(*dto.Sitemap.ValidateUrls)
	}

	if dto.Logger.Level != "" {
		b.WithLoggerLevel(dto.Logger.Level)
	}
	if len(dto.Logger.ComponentLevels) > 0 {
		b.WithLoggerComponentLevels(dto.Logger.ComponentLevels)
	}
	b.WithLoggerFileEnabled(dto.Logger.FileEnabled)
	if dto.Logger.FilePath != "" {
		b.WithLoggerFilePath(dto.Logger.FilePath)
	}
	if dto.Logger.UseColors {
		b.WithLoggerUseColors(true)
	}
	if dto.Logger.Format != "" {
		b.WithLoggerFormat(dto.Logger.Format)
	}

	return b.Build()
}

// WithConfigFile reads path, sniffing its format from the extension
// (".yaml"/".yml" via yaml.v3, anything else via encoding/json), and
// overlays its non-zero fields onto WithDefault's defaults.
func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	var dto configDTO
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &dto)
	default:
		err = json.Unmarshal(content, &dto)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(dto)
}

// WithDefault starts a Builder seeded with the defaults in §6's config
// option table, for the given root/seed Url. seedURL is mandatory; Build
// fails without one.
func WithDefault(seedURL urlx.Url) *Config {
	return &Config{
		seedURL: seedURL,

		httpUserAgent: "Ethicrawl/1.0",
		httpTimeout:   30 * time.Second,
		httpRateLimit: 0.5,
		httpJitter:    0.2,
		httpHeaders:   headers.New(),

		sitemapMaxDepth:       5,
		sitemapFollowExternal: false,
		sitemapValidateURLs:   true,

		loggerLevel:     "info",
		loggerUseColors: true,
		loggerFormat:    "text",
	}
}

func (c *Config) WithWhitelist(whitelist []urlx.Url) *Config {
	c.whitelist = whitelist
	return c
}

func (c *Config) WithHTTPUserAgent(ua string) *Config {
	c.httpUserAgent = ua
	return c
}

func (c *Config) WithHTTPTimeout(timeout time.Duration) *Config {
	c.httpTimeout = timeout
	return c
}

func (c *Config) WithHTTPRateLimit(rate float64) *Config {
	c.httpRateLimit = rate
	return c
}

// WithHTTPJitter sets the jitter fraction of the dispatch interval, in
// [0,1). The absolute ceiling internal/ratelimit.RateLimiter actually uses
// is computed from this fraction and HTTPRateLimit by JitterDuration.
func (c *Config) WithHTTPJitter(fraction float64) *Config {
	c.httpJitter = fraction
	return c
}

func (c *Config) WithHTTPHeaders(h *headers.Headers) *Config {
	c.httpHeaders = h
	return c
}

func (c *Config) WithHTTPProxyHTTP(proxy string) *Config {
	c.httpProxyHTTP = proxy
	return c
}

func (c *Config) WithHTTPProxyHTTPS(proxy string) *Config {
	c.httpProxyHTTPS = proxy
	return c
}

func (c *Config) WithSitemapMaxDepth(depth int) *Config {
	c.sitemapMaxDepth = depth
	return c
}

func (c *Config) WithSitemapFollowExternal(follow bool) *Config {
	c.sitemapFollowExternal = follow
	return c
}

func (c *Config) WithSitemapValidateURLs(validate bool) *Config {
	c.sitemapValidateURLs = validate
	return c
}

func (c *Config) WithLoggerLevel(level string) *Config {
	c.loggerLevel = level
	return c
}

func (c *Config) WithLoggerComponentLevels(levels map[string]string) *Config {
	c.loggerComponentLevels = levels
	return c
}

func (c *Config) WithLoggerFileEnabled(enabled bool) *Config {
	c.loggerFileEnabled = enabled
	return c
}

func (c *Config) WithLoggerFilePath(path string) *Config {
	c.loggerFilePath = path
	return c
}

func (c *Config) WithLoggerUseColors(use bool) *Config {
	c.loggerUseColors = use
	return c
}

func (c *Config) WithLoggerFormat(format string) *Config {
	c.loggerFormat = format
	return c
}

// Build validates every range invariant in §6's option table and returns
// the immutable Config value.
func (c *Config) Build() (Config, error) {
	if c.seedURL.Scheme() == "" {
		return Config{}, fmt.Errorf("%w: seedUrl cannot be empty", ErrInvalidConfig)
	}
	if c.httpTimeout <= 0 || c.httpTimeout > 300*time.Second {
		return Config{}, fmt.Errorf("%w: http.timeout must be in (0, 300s], got %s", ErrInvalidConfig, c.httpTimeout)
	}
	if c.httpJitter < 0 || c.httpJitter >= 1 {
		return Config{}, fmt.Errorf("%w: http.jitter must be in [0, 1), got %v", ErrInvalidConfig, c.httpJitter)
	}
	if c.sitemapMaxDepth < 1 {
		return Config{}, fmt.Errorf("%w: sitemap.max_depth must be >= 1, got %d", ErrInvalidConfig, c.sitemapMaxDepth)
	}
	if c.httpHeaders == nil {
		c.httpHeaders = headers.New()
	}
	return *c, nil
}

func (c Config) SeedURL() urlx.Url { return c.seedURL }

func (c Config) Whitelist() []urlx.Url {
	out := make([]urlx.Url, len(c.whitelist))
	copy(out, c.whitelist)
	return out
}

func (c Config) HTTPUserAgent() string { return c.httpUserAgent }

func (c Config) HTTPTimeout() time.Duration { return c.httpTimeout }

func (c Config) HTTPRateLimit() float64 { return c.httpRateLimit }

func (c Config) HTTPJitter() float64 { return c.httpJitter }

// JitterDuration converts the configured jitter fraction into the absolute
// ceiling internal/ratelimit.RateLimiter expects: the fraction of one
// dispatch interval at HTTPRateLimit. A non-positive rate limit (no pacing)
// yields zero jitter, since there is no interval to take a fraction of.
func (c Config) JitterDuration() time.Duration {
	if c.httpRateLimit <= 0 {
		return 0
	}
	interval := time.Duration(float64(time.Second) / c.httpRateLimit)
	return time.Duration(c.httpJitter * float64(interval))
}

func (c Config) HTTPHeaders() *headers.Headers {
	if c.httpHeaders == nil {
		return headers.New()
	}
	return c.httpHeaders.Clone()
}

func (c Config) HTTPProxyHTTP() string { return c.httpProxyHTTP }

func (c Config) HTTPProxyHTTPS() string { return c.httpProxyHTTPS }

func (c Config) SitemapMaxDepth() int { return c.sitemapMaxDepth }

func (c Config) SitemapFollowExternal() bool { return c.sitemapFollowExternal }

func (c Config) SitemapValidateURLs() bool { return c.sitemapValidateURLs }

func (c Config) LoggerLevel() string { return c.loggerLevel }

func (c Config) LoggerComponentLevels() map[string]string {
	out := make(map[string]string, len(c.loggerComponentLevels))
	for k, v := range c.loggerComponentLevels {
		out[k] = v
	}
	return out
}

func (c Config) LoggerFileEnabled() bool { return c.loggerFileEnabled }

func (c Config) LoggerFilePath() string { return c.loggerFilePath }

func (c Config) LoggerUseColors() bool { return c.loggerUseColors }

func (c Config) LoggerFormat() string { return c.loggerFormat }
