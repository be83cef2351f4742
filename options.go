package searchq

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
	addresses []string
	username  string
	password  string

	scrollKeepAlive time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAddresses sets the Elasticsearch node addresses to connect to.
func WithAddresses(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addresses = append(c.addresses, addrs...)
	})
}

// WithBasicAuth sets the username and password sent with every request.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithScrollKeepAlive sets how long the server keeps a scroll cursor
// alive between batches when the query does not request its own scroll
// time. Default: 5 minutes.
func WithScrollKeepAlive(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.scrollKeepAlive = d
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts, durations
// and scroll batches) on the given registerer. Pass nil to disable
// (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
