package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"notedown/internal/domain"
)

// Client talks to the note service's REST surface. It implements
// editor.NoteAPI; 404 responses map back to domain.ErrNoteNotFound so
// callers can distinguish a lookup miss from a server failure.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Create(ctx context.Context, content string) (*domain.Note, error) {
	var note domain.Note
	err := c.do(ctx, http.MethodPost, "/api/notes/new", domain.CreateNoteRequest{Content: content}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) Get(ctx context.Context, id string) (*domain.Note, error) {
	var note domain.Note
	err := c.do(ctx, http.MethodGet, "/api/notes/"+id, nil, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) ListAll(ctx context.Context) ([]*domain.Note, error) {
	var notes []*domain.Note
	err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) UpdateContent(ctx context.Context, id, content string) (*domain.Note, error) {
	var note domain.Note
	err := c.do(ctx, http.MethodPatch, "/api/notes/"+id, domain.UpdateNoteRequest{Content: &content}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+id, nil, nil)
}

// Render asks the server for the HTML preview of markdown content.
func (c *Client) Render(ctx context.Context, content string) (string, error) {
	var resp domain.RenderResponse
	err := c.do(ctx, http.MethodPost, "/api/render", domain.RenderRequest{Content: content}, &resp)
	if err != nil {
		return "", err
	}
	return resp.HTML, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNoteNotFound
	case resp.StatusCode >= 400:
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = resp.Status
		}
		return fmt.Errorf("server error: %s", errBody.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
