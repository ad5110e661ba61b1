// Package client is a Go client for the blog API. Besides plain request
// methods it offers ArticleView, which keeps optimistic local like and
// comment state for one article and reconciles it with the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnauthenticated is returned locally when a mutation needs a signed-in user
var ErrUnauthenticated = errors.New("client: sign in required")

// APIError is a non-2xx response
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Field   string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api: %d %s (field %s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ArticleDetail is the payload of the article detail endpoint
type ArticleDetail struct {
	Article
	HTML     string     `json:"html"`
	Liked    bool       `json:"liked"`
	Comments []*Comment `json:"comments"`
	// ETag is the validator returned with the detail
	ETag string `json:"-"`
}

// LikeResult is the server's answer to a like toggle
type LikeResult struct {
	Liked      bool `json:"liked"`
	Delta      int  `json:"delta"`
	LikesCount int  `json:"likes_count"`
}

// FeedPage is one response of the public feed
type FeedPage struct {
	Items         []*Article `json:"items"`
	Total         int        `json:"total"`
	Query         string     `json:"query"`
	ActiveFilters int        `json:"active_filters"`
}

// Client talks to the blog API as one user. The user is identified the way
// the upstream auth proxy does it, through X-User-ID and X-User-Email, so
// the server must run with trusted proxy headers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userID     string
	email      string
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUser signs requests as the given user
func WithUser(userID, email string) Option {
	return func(c *Client) {
		c.userID = userID
		c.email = email
	}
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignedIn reports whether the client carries a user identity
func (c *Client) SignedIn() bool {
	return c.userID != ""
}

// Article fetches an article by id or slug
func (c *Client) Article(ctx context.Context, ref string) (*ArticleDetail, error) {
	var detail ArticleDetail
	header, err := c.do(ctx, http.MethodGet, "/v1/articles/"+url.PathEscape(ref), nil, &detail)
	if err != nil {
		return nil, err
	}
	detail.ETag = header.Get("ETag")
	if detail.Comments == nil {
		detail.Comments = []*Comment{}
	}
	return &detail, nil
}

// Feed lists public articles. query holds q, tags, author and sort.
func (c *Client) Feed(ctx context.Context, query url.Values) (*FeedPage, error) {
	path := "/v1/articles"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page FeedPage
	if _, err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ToggleLike flips the user's like on an article
func (c *Client) ToggleLike(ctx context.Context, articleID string) (*LikeResult, error) {
	if !c.SignedIn() {
		return nil, ErrUnauthenticated
	}
	var result LikeResult
	if _, err := c.do(ctx, http.MethodPost, "/v1/articles/"+url.PathEscape(articleID)+"/like", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PostComment adds a comment to an article
func (c *Client) PostComment(ctx context.Context, articleID, content string) (*Comment, error) {
	if !c.SignedIn() {
		return nil, ErrUnauthenticated
	}
	var comment Comment
	body := map[string]string{"content": content}
	if _, err := c.do(ctx, http.MethodPost, "/v1/articles/"+url.PathEscape(articleID)+"/comments", body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
		req.Header.Set("X-User-Email", c.email)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return resp.Header, apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.Header, nil
}
