// Package medsearch looks up medicine names for form autocomplete against
// the NLM Clinical Tables RxTerms API.
package medsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://clinicaltables.nlm.nih.gov/api/rxterms/v3"
	// MinQueryLength is the shortest query sent upstream, in runes.
	MinQueryLength = 2
)

// Suggestion is one autocomplete entry. ID is the position in the upstream
// result and is only stable within one response.
type Suggestion struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Strengths []string `json:"strengths"`
	RxCUIs    []string `json:"rxcuis,omitempty"`
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(u, "/") }
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search never fails: short queries and upstream problems both give an empty
// list, and problems are logged.
func (c *Client) Search(ctx context.Context, query string) []Suggestion {
	out, _ := c.Lookup(ctx, query)
	return out
}

// Lookup is Search that also reports the upstream error. The list is never
// nil, so callers can serve it either way.
func (c *Client) Lookup(ctx context.Context, query string) ([]Suggestion, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []Suggestion{}, nil
	}
	out, err := c.search(ctx, query)
	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("medicine search failed")
		return []Suggestion{}, err
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, query string) ([]Suggestion, error) {
	q := url.Values{}
	q.Set("terms", query)
	q.Set("ef", "STRENGTHS_AND_FORMS,RXCUIS")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rxterms: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("rxterms: decode: %w", err)
	}
	return parseResponse(raw)
}

// parseResponse reads [total, [names], {field: [[values]...]}, ...]. Missing
// trailing elements are treated as empty.
func parseResponse(raw []json.RawMessage) ([]Suggestion, error) {
	var names []string
	if len(raw) > 1 && !isNull(raw[1]) {
		if err := json.Unmarshal(raw[1], &names); err != nil {
			return nil, fmt.Errorf("rxterms: names: %w", err)
		}
	}
	var extra struct {
		Strengths [][]string `json:"STRENGTHS_AND_FORMS"`
		RxCUIs    [][]string `json:"RXCUIS"`
	}
	if len(raw) > 2 && !isNull(raw[2]) {
		if err := json.Unmarshal(raw[2], &extra); err != nil {
			return nil, fmt.Errorf("rxterms: extra fields: %w", err)
		}
	}

	out := make([]Suggestion, 0, len(names))
	for i, name := range names {
		s := Suggestion{ID: i, Name: name, Strengths: []string{}}
		if i < len(extra.Strengths) && extra.Strengths[i] != nil {
			s.Strengths = extra.Strengths[i]
		}
		if i < len(extra.RxCUIs) {
			s.RxCUIs = extra.RxCUIs[i]
		}
		out = append(out, s)
	}
	return out, nil
}

func isNull(m json.RawMessage) bool {
	return string(m) == "null"
}
