// SPDX-License-Identifier: Apache-2.0

// Package index talks to the remote distribution index
package index

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-version"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Work-Fort/Dist/pkg/dist"
)

// ErrNotFound is returned when the index has no matching distribution
var ErrNotFound = errors.New("distribution not found in index")

// maxIndexSize caps how much of an index response is read
const maxIndexSize = 8 << 20

//go:embed index.schema.json
var indexSchemaJSON string

var indexSchema = jsonschema.MustCompileString("index.schema.json", indexSchemaJSON)

// document is the wire shape of the index response
type document struct {
	List []dist.Distribution `json:"list"`
}

// Client fetches the distribution index
type Client struct {
	url   string
	token string
	http  *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken sends token as a bearer credential with every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates an index client for url
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:  url,
		http: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Distributions fetches and validates the full index, in index order
func (c *Client) Distributions(ctx context.Context) ([]dist.Distribution, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.DoRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("index returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	if err := validate(body); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}

	log.Debug("Fetched distribution index", "url", c.url, "count", len(doc.List))
	return doc.List, nil
}

// Find returns the entry for typ and ver
func (c *Client) Find(ctx context.Context, typ, ver string) (*dist.Distribution, error) {
	all, err := c.Distributions(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range all {
		if d.Version == ver && d.Type == typ {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, dist.Compose(typ, ver))
}

// Latest returns the newest entry of typ by semantic version
func (c *Client) Latest(ctx context.Context, typ string) (*dist.Distribution, error) {
	all, err := c.Distributions(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range SortBySemver(all) {
		if d.Type == typ {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s distributions", ErrNotFound, typ)
}

// AuthHeaders returns the headers downloads from the index host need
func (c *Client) AuthHeaders() map[string]string {
	if c.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.token}
}

// DoRequest executes an HTTP request with automatic token injection
func (c *Client) DoRequest(req *http.Request) (*http.Response, error) {
	for k, v := range c.AuthHeaders() {
		req.Header.Set(k, v)
	}
	return c.http.Do(req)
}

func validate(body []byte) error {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}
	if err := indexSchema.Validate(v); err != nil {
		return fmt.Errorf("index does not match schema: %w", err)
	}
	return nil
}

// SortBySemver sorts distributions by semantic version in descending order (newest first)
func SortBySemver(dists []dist.Distribution) []dist.Distribution {
	sorted := make([]dist.Distribution, len(dists))
	copy(sorted, dists)

	// Unparsable versions sort after every parsable one, by string among themselves
	sort.SliceStable(sorted, func(i, j int) bool {
		v1, err1 := version.NewVersion(sorted[i].Version)
		v2, err2 := version.NewVersion(sorted[j].Version)

		switch {
		case err1 == nil && err2 == nil:
			return v1.GreaterThan(v2)
		case err1 == nil:
			return true
		case err2 == nil:
			return false
		default:
			return sorted[i].Version > sorted[j].Version
		}
	})

	return sorted
}
