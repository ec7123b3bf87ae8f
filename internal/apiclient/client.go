// Package apiclient is the typed REST client for the task API. It performs
// no retries: a failed call surfaces to the caller, who leaves local state
// in its last-known-good form.
package apiclient

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

	"github.com/sashankbanda/Focusly/internal/model"
	"github.com/sashankbanda/Focusly/internal/task"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid request")
)

// TokenSource supplies the bearer token for each request; tokens are
// typically short-lived and re-minted by the identity provider SDK.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken adapts a fixed token string to a TokenSource.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

type Client struct {
	base  string
	http  *http.Client
	token TokenSource
}

func New(baseURL string, token TokenSource) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if token == nil {
		return nil, errors.New("token source is required")
	}
	return &Client{
		base:  baseURL,
		http:  &http.Client{Timeout: 15 * time.Second},
		token: token,
	}, nil
}

type apiError struct {
	Error string `json:"error"`
}

func statusErr(code int, body []byte) error {
	msg := ""
	var ae apiError
	if json.Unmarshal(body, &ae) == nil {
		msg = ae.Error
	}
	var base error
	switch code {
	case http.StatusUnauthorized:
		base = ErrUnauthorized
	case http.StatusForbidden:
		base = ErrForbidden
	case http.StatusNotFound:
		base = ErrNotFound
	case http.StatusBadRequest:
		base = ErrInvalid
	default:
		base = fmt.Errorf("unexpected status %d", code)
	}
	if msg == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, msg)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	tok, err := c.token(ctx)
	if err != nil {
		return fmt.Errorf("token source: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return statusErr(resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// List fetches the user's tasks, newest created first.
func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	var docs []task.Doc
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, task.DecodeDoc(d))
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, in task.CreateDoc) (model.Task, error) {
	var doc task.Doc
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &doc); err != nil {
		return model.Task{}, err
	}
	return task.DecodeDoc(doc), nil
}

func (c *Client) Update(ctx context.Context, id model.TaskID, p task.Patch) (model.Task, error) {
	var doc task.Doc
	path := "/api/tasks/" + url.PathEscape(string(id))
	if err := c.do(ctx, http.MethodPut, path, task.EncodePatch(p), &doc); err != nil {
		return model.Task{}, err
	}
	return task.DecodeDoc(doc), nil
}

func (c *Client) Delete(ctx context.Context, id model.TaskID) error {
	path := "/api/tasks/" + url.PathEscape(string(id))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ClearHistory deletes every completed, non-repeating task and reports how
// many were removed.
func (c *Client) ClearHistory(ctx context.Context) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/history", nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}
