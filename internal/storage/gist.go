package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tyreadvisor/internal/model"
)

const gistFileName = "tyre-database.json"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewGist creates a Store that keeps the database as a JSON file inside a
// GitHub Gist. Intended for serverless-style deployments with no local disk.
func NewGist(client HTTPClient, gistID, token string) Store {
	return newBlobStore(&gistBlob{
		http:  client,
		url:   "https://api.github.com/gists/" + gistID,
		token: token,
	})
}

type gistBlob struct {
	http  HTTPClient
	url   string
	token string
}

type gistPayload struct {
	Files map[string]struct {
		Content string `json:"content"`
	} `json:"files"`
}

func (g *gistBlob) load(ctx context.Context) (*model.Database, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gist: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gist api status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read gist body: %w", err)
	}

	var payload gistPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode gist: %w", err)
	}

	file, ok := payload.Files[gistFileName]
	if !ok || file.Content == "" {
		return &model.Database{LastSync: time.Now().UTC()}, nil
	}

	var db model.Database
	if err := json.Unmarshal([]byte(file.Content), &db); err != nil {
		return nil, fmt.Errorf("decode database: %w", err)
	}
	return &db, nil
}

func (g *gistBlob) save(ctx context.Context, db *model.Database) error {
	content, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}

	update := map[string]any{
		"files": map[string]any{
			gistFileName: map[string]string{"content": string(content)},
		},
	}
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode gist update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("update gist: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gist api status %d", resp.StatusCode)
	}
	return nil
}

func (g *gistBlob) close() error { return nil }

func (g *gistBlob) setHeaders(req *http.Request) {
	if g.token != "" {
		req.Header.Set("Authorization", "token "+g.token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
