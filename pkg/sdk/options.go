package knnvote

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"; empty disables the result cache
	addrs    []string
	password string
	cacheTTL time.Duration

	builtin bool
	files   []string

	defaultK int
	maxK     int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey caches results in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis caches results in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCacheTTL sets how long cached results live. Default: 5 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithBuiltinDatasets registers "clusters" and "wood-defects".
func WithBuiltinDatasets() Option {
	return optionFunc(func(c *clientConfig) {
		c.builtin = true
	})
}

// WithDatasetFiles registers datasets from .yaml, .yml or .toml files.
func WithDatasetFiles(paths ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.files = append(c.files, paths...)
	})
}

// WithDefaultK sets k for calls that do not pass WithK. Default: 5.
func WithDefaultK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultK = k
	})
}

// WithMaxK rejects larger k. Default: unlimited.
func WithMaxK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxK = k
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// ClassifyOption configures a single Classify call.
type ClassifyOption func(*classifyConfig)

type classifyConfig struct {
	k int
}

// WithK sets the number of voting neighbors.
func WithK(k int) ClassifyOption {
	return func(c *classifyConfig) {
		c.k = k
	}
}
