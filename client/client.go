// Package client is a minimal GraphQL-over-HTTP client. The generator uses
// it to introspect remote endpoints, and generated code can use it to
// execute operations.
package client

import (
	"context"
	"fmt"
	"net/http"
)

type Client struct {
	client   *http.Client
	header   http.Header
	endpoint string
}

// NewClient creates a new http client wrapper.
func NewClient(endpoint string, options ...Option) *Client {
	client := &Client{
		endpoint: endpoint,
		client:   http.DefaultClient,
	}
	for _, option := range options {
		option(client)
	}

	return client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.client = httpClient
	}
}

func WithHTTPHeader(header http.Header) Option {
	return func(c *Client) {
		c.header = header
	}
}

func (c *Client) Post(ctx context.Context, operationName, query string, variables map[string]any, out any, options ...Option) error {
	for _, option := range options {
		option(c)
	}

	// Variables carrying files go as multipart form per
	// https://github.com/jaydenseric/graphql-multipart-request-spec
	req, err := NewMultipartRequest(ctx, c.endpoint, operationName, query, variables)
	if err != nil {
		return fmt.Errorf("failed to create post multipart request: %w", err)
	}

	if req == nil {
		req, err = NewRequest(ctx, c.endpoint, operationName, query, variables)
		if err != nil {
			return fmt.Errorf("failed to create post request: %w", err)
		}
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return ParseResponse(resp, out)
}
