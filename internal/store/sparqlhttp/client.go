// Package sparqlhttp is the SPARQL 1.1 protocol backend of the store
// boundary. It posts rendered query text to an endpoint and decodes
// SELECT results from the standard JSON format and CONSTRUCT results
// from N-Triples.
package sparqlhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/sparql"
	"github.com/arkival/trellis/internal/store"
)

// Client talks to one SPARQL endpoint. Safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a client for the endpoint. timeout bounds each request;
// zero means 30 seconds.
func New(endpoint string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Select implements store.TripleStore.
func (c *Client) Select(ctx context.Context, q sparql.SelectQuery) ([]store.Row, error) {
	text, err := sparql.RenderSelect(q)
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, text, "application/sparql-results+json")
	if err != nil {
		return nil, err
	}
	return decodeSelect(body)
}

// Construct implements store.TripleStore.
func (c *Client) Construct(ctx context.Context, q sparql.ConstructQuery) ([]rdf.Triple, error) {
	text, err := sparql.RenderConstruct(q)
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, text, "application/n-triples")
	if err != nil {
		return nil, err
	}
	return rdf.ParseNTriples(strings.NewReader(string(body)))
}

func (c *Client) post(ctx context.Context, query, accept string) ([]byte, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &store.UnavailableError{
			Endpoint: c.endpoint,
			Cause:    fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}
	return io.ReadAll(resp.Body)
}

// classify maps transport failures onto the two store error kinds.
func (c *Client) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &store.TimeoutError{Endpoint: c.endpoint, Cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &store.TimeoutError{Endpoint: c.endpoint, Cause: err}
	}
	return &store.UnavailableError{Endpoint: c.endpoint, Cause: err}
}

// selectResult is the SPARQL 1.1 JSON results format.
type selectResult struct {
	Results struct {
		Bindings []map[string]bindingTerm `json:"bindings"`
	} `json:"results"`
}

type bindingTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype"`
}

func decodeSelect(body []byte) ([]store.Row, error) {
	var result selectResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode select results: %w", err)
	}
	rows := make([]store.Row, 0, len(result.Results.Bindings))
	for _, binding := range result.Results.Bindings {
		row := store.Row{}
		for name, term := range binding {
			switch term.Type {
			case "uri":
				row[name] = rdf.NewIRI(term.Value)
			case "literal", "typed-literal":
				dt := term.Datatype
				if dt == "" {
					dt = rdf.XsdString
				}
				row[name] = rdf.NewLiteral(term.Value, dt)
			default:
				// Blank nodes and anything newer are not part of this
				// engine's data model; skip the binding.
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
