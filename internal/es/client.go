// Package es adapts the go-elasticsearch client to the narrow store
// contract the query layer needs: search, scroll continuation and
// cleanup, counts, delete-by-query and template invocation. It owns its
// own request/response types and performs no query construction.
package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Config holds the connection settings for the store.
type Config struct {
	Addresses []string
	Username  string
	Password  string
}

// Client wraps a go-elasticsearch client.
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates a store client for the given addresses.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("es: at least one address is required")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: create client: %w", err)
	}
	return &Client{es: client}, nil
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	req := esapi.PingRequest{}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("es: ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: ping: %s", res.Status())
	}
	return nil
}

// encodeBody serializes a request body map.
func encodeBody(body map[string]any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("es: encode body: %w", err)
	}
	return &buf, nil
}

// responseError turns a non-2xx esapi response into an error carrying
// the store's reason if one is present.
func responseError(op string, res *esapi.Response) error {
	var payload struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err == nil && payload.Error.Type != "" {
		return fmt.Errorf("es: %s: %s: %s", op, payload.Error.Type, payload.Error.Reason)
	}
	return fmt.Errorf("es: %s: %s", op, res.Status())
}
