package searchq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/searchq/internal/es"
)

const defaultScrollKeepAlive = 5 * time.Minute

// Client is the searchq entry point. It owns the store connection and
// hands out typed index handles via NewIndex.
type Client struct {
	store           *es.Client
	obs             *observer
	scrollKeepAlive time.Duration
}

// New creates a searchq Client and connects to Elasticsearch.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		scrollKeepAlive: defaultScrollKeepAlive,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addresses) == 0 {
		return nil, errors.New("searchq: at least one address required (use WithAddresses)")
	}
	if cfg.scrollKeepAlive <= 0 {
		return nil, errors.New("searchq: scroll keep-alive must be positive")
	}

	store, err := es.NewClient(es.Config{
		Addresses: cfg.addresses,
		Username:  cfg.username,
		Password:  cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("searchq: create store: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:           store,
		obs:             obs,
		scrollKeepAlive: cfg.scrollKeepAlive,
	}, nil
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
