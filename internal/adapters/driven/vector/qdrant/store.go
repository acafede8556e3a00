// Package qdrant implements VectorStore against the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const (
	// DefaultURL is the local Qdrant REST endpoint.
	DefaultURL = "http://localhost:6333"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Config holds the configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant REST base URL.
	URL string

	// APIKey is sent as the api-key header when non-empty.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration
}

// Store talks to Qdrant over HTTP.
type Store struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewStore creates a Qdrant store. An empty URL is a configuration error.
func NewStore(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, &domain.MissingConfigError{
			Setting: "vector_store.url",
			Hint:    "set QDRANT_URL or run 'plancheck settings set vector_store.url <url>'",
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

// CreateCollection creates a collection.
func (s *Store) CreateCollection(ctx context.Context, name string, vectorSize int, distance domain.DistanceMetric) error {
	if name == "" || vectorSize <= 0 {
		return fmt.Errorf("%w: collection name and positive vector size required", domain.ErrInvalidInput)
	}
	if distance == "" {
		distance = domain.DistanceCosine
	}

	body := createCollectionRequest{Vectors: vectorParams{Size: vectorSize, Distance: string(distance)}}
	status, respBody, err := s.do(ctx, http.MethodPut, collectionPath(name), body)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusConflict,
		status == http.StatusBadRequest && strings.Contains(strings.ToLower(string(respBody)), "already exists"):
		return fmt.Errorf("collection %s: %w", name, domain.ErrAlreadyExists)
	case status >= 300:
		return statusError("create collection", status, respBody)
	}

	logger.Debug("qdrant: created collection %s (size=%d, distance=%s)", name, vectorSize, distance)
	return nil
}

type collectionResponse struct {
	Result struct {
		PointsCount *int `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors json.RawMessage `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// GetCollection returns collection details.
func (s *Store) GetCollection(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	status, respBody, err := s.do(ctx, http.MethodGet, collectionPath(name), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if status >= 300 {
		return nil, statusError("get collection", status, respBody)
	}

	var resp collectionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode collection: %v", domain.ErrUpstreamUnavailable, err)
	}

	info := &domain.CollectionInfo{Name: name}
	if resp.Result.PointsCount != nil {
		info.PointsCount = *resp.Result.PointsCount
	}

	// Unnamed vectors decode as a single params object.
	var params vectorParams
	if len(resp.Result.Config.Params.Vectors) > 0 &&
		json.Unmarshal(resp.Result.Config.Params.Vectors, &params) == nil {
		info.VectorSize = params.Size
		info.Distance = domain.DistanceMetric(params.Distance)
	}

	return info, nil
}

// DeleteCollection drops a collection.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	status, respBody, err := s.do(ctx, http.MethodDelete, collectionPath(name), nil)
	if err != nil {
		return err
	}
	if status >= 300 && status != http.StatusNotFound {
		return statusError("delete collection", status, respBody)
	}
	return nil
}

type wirePoint struct {
	ID      uint64         `json:"id"`
	Vector  []float32      `json:"vector,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

type upsertRequest struct {
	Points []wirePoint `json:"points"`
}

// Upsert inserts or overwrites points.
func (s *Store) Upsert(ctx context.Context, collection string, points []driven.Point, wait bool) error {
	if len(points) == 0 {
		return nil
	}

	req := upsertRequest{Points: make([]wirePoint, len(points))}
	for i, p := range points {
		req.Points[i] = wirePoint{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}

	path := collectionPath(collection) + "/points"
	if wait {
		path += "?wait=true"
	}

	status, respBody, err := s.do(ctx, http.MethodPut, path, req)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("collection %s: %w", collection, domain.ErrNotFound)
	}
	if status >= 300 {
		return statusError("upsert points", status, respBody)
	}
	return nil
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		ID      uint64         `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search returns the nearest points.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]driven.ScoredPoint, error) {
	if limit <= 0 {
		return nil, nil
	}

	req := searchRequest{Vector: vector, Limit: limit, WithPayload: true}
	status, respBody, err := s.do(ctx, http.MethodPost, collectionPath(collection)+"/points/search", req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("collection %s: %w", collection, domain.ErrNotFound)
	}
	if status >= 300 {
		return nil, statusError("search", status, respBody)
	}

	var resp searchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode search: %v", domain.ErrUpstreamUnavailable, err)
	}

	results := make([]driven.ScoredPoint, len(resp.Result))
	for i, r := range resp.Result {
		results[i] = driven.ScoredPoint{ID: r.ID, Score: r.Score, Payload: r.Payload}
	}
	return results, nil
}

type scrollRequest struct {
	Limit       int     `json:"limit"`
	Offset      *uint64 `json:"offset,omitempty"`
	WithPayload bool    `json:"with_payload"`
	WithVector  bool    `json:"with_vector"`
}

type scrollResponse struct {
	Result struct {
		Points         []wirePoint `json:"points"`
		NextPageOffset *uint64     `json:"next_page_offset"`
	} `json:"result"`
}

// Scroll pages through points.
func (s *Store) Scroll(ctx context.Context, collection string, limit int, offset *uint64) (*driven.ScrollPage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: scroll limit must be positive", domain.ErrInvalidInput)
	}

	req := scrollRequest{Limit: limit, Offset: offset, WithPayload: true}
	status, respBody, err := s.do(ctx, http.MethodPost, collectionPath(collection)+"/points/scroll", req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("collection %s: %w", collection, domain.ErrNotFound)
	}
	if status >= 300 {
		return nil, statusError("scroll", status, respBody)
	}

	var resp scrollResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode scroll: %v", domain.ErrUpstreamUnavailable, err)
	}

	page := &driven.ScrollPage{
		Points:     make([]driven.Point, len(resp.Result.Points)),
		NextOffset: resp.Result.NextPageOffset,
	}
	for i, p := range resp.Result.Points {
		page.Points[i] = driven.Point{ID: p.ID, Payload: p.Payload}
	}
	return page, nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	status, respBody, err := s.do(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return statusError("ping", status, respBody)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Store) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: qdrant %s %s: %w", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read qdrant response: %w", domain.ErrUpstreamUnavailable, err)
	}
	return resp.StatusCode, respBody, nil
}

func collectionPath(name string) string {
	return "/collections/" + url.PathEscape(name)
}

func statusError(op string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return fmt.Errorf("%w: qdrant %s: status %d: %s", domain.ErrUpstreamUnavailable, op, status, msg)
}
