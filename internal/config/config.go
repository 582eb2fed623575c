// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"reddit-client/internal/ratelimit"
)

const (
	DefaultUserAgent = "reddit-client/0.1"
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultOAuthURL  = "https://oauth.reddit.com"
)

type Config struct {
	ProxyURLs        []string
	RandomUserAgents bool
	UserAgent        string
	MaxRetries       int

	ClientID     string
	ClientSecret string
	Username     string
	Password     string

	RedditBaseURL string
	OAuthBaseURL  string

	RateLimitMode     string
	RequestsPerMinute int
	RateLimitBurst    int

	FeedPollInterval time.Duration
	FeedMaxRetries   int

	DefaultPostLimit    int
	DefaultCommentLimit int
	ServerPort          string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	RequestTimeout      time.Duration
	LogLevel            string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	proxyURLs, err := parseProxyURLs(os.Getenv("REDDIT_PROXY_URLS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProxyURLs:           proxyURLs,
		RandomUserAgents:    getEnvBool("USE_RANDOM_USER_AGENTS", false),
		UserAgent:           getEnv("REDDIT_USER_AGENT", DefaultUserAgent),
		MaxRetries:          getEnvInt("PROXY_MAX_RETRIES", 1),
		ClientID:            os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret:        os.Getenv("REDDIT_CLIENT_SECRET"),
		Username:            os.Getenv("REDDIT_USERNAME"),
		Password:            os.Getenv("REDDIT_PASSWORD"),
		RedditBaseURL:       strings.TrimRight(getEnv("REDDIT_BASE_URL", DefaultBaseURL), "/"),
		OAuthBaseURL:        strings.TrimRight(getEnv("REDDIT_OAUTH_URL", DefaultOAuthURL), "/"),
		RateLimitMode:       os.Getenv("RATE_LIMIT_MODE"),
		RequestsPerMinute:   getEnvInt("RATE_LIMIT_RPM", 0),
		RateLimitBurst:      getEnvInt("RATE_LIMIT_BURST", 10),
		FeedPollInterval:    getEnvDuration("FEED_POLL_INTERVAL", 3*time.Second),
		FeedMaxRetries:      getEnvInt("FEED_MAX_RETRIES", 3),
		DefaultPostLimit:    getEnvInt("SCRAPER_DEFAULT_POST_LIMIT", 25),
		DefaultCommentLimit: getEnvInt("SCRAPER_DEFAULT_COMMENT_LIMIT", 50),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		RequestTimeout:      getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ReadTimeout:         getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	if cfg.RateLimitMode != "" {
		if _, err := ratelimit.ParseMode(cfg.RateLimitMode); err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_MODE: %w", err)
		}
	}

	return cfg, nil
}

// Default is an anonymous configuration that ignores the environment.
func Default() *Config {
	return &Config{
		UserAgent:           DefaultUserAgent,
		MaxRetries:          1,
		RedditBaseURL:       DefaultBaseURL,
		OAuthBaseURL:        DefaultOAuthURL,
		RateLimitBurst:      10,
		FeedPollInterval:    3 * time.Second,
		FeedMaxRetries:      3,
		DefaultPostLimit:    25,
		DefaultCommentLimit: 50,
		ServerPort:          "8080",
		RequestTimeout:      30 * time.Second,
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        30 * time.Second,
		LogLevel:            "info",
	}
}

// Authenticated reports whether script app credentials are configured.
func (c *Config) Authenticated() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.Username != "" && c.Password != ""
}

// LimiterMode is the configured mode, or batched for authenticated clients and
// off for anonymous ones when none is set.
func (c *Config) LimiterMode() ratelimit.Mode {
	if mode, err := ratelimit.ParseMode(c.RateLimitMode); err == nil {
		return mode
	}
	if c.Authenticated() {
		return ratelimit.ModeBatched
	}
	return ratelimit.ModeOff
}

func parseProxyURLs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var proxyURLs []string
	for _, proxy := range strings.Split(raw, ",") {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %s: %w", proxy, err)
		}

		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("invalid proxy URL format, must start with http://, https:// or socks5://: %s", proxy)
		}

		if u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %s: missing host", proxy)
		}

		proxyURLs = append(proxyURLs, proxy)
	}

	return proxyURLs, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
