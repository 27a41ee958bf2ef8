package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ai-rag-weather/server/internal/core/errx"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

// Config contains connection details for the Qdrant vector store.
type Config struct {
	URL         string `envconfig:"QDRANT_URL" default:"http://127.0.0.1:6333"`
	APIKey      string `envconfig:"QDRANT_API_KEY"`
	Collection  string `envconfig:"QDRANT_COLLECTION" default:"ai_rag_weather_docs"`
	TimeoutSecs int    `envconfig:"QDRANT_TIMEOUT_SECS" default:"15"`
}

// Store is a minimal REST client to Qdrant. It assumes cosine distance and
// a single named collection.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Point is one vector with its payload, addressed by a numeric ID.
type Point struct {
	ID      uint64         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// ScoredPoint is one similarity-search hit, ranked by score.
type ScoredPoint struct {
	ID      uint64         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func New(cfg Config) *Store {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// ErrDimensionMismatch reports that the existing collection was created for
// vectors of a different size and recreation was not allowed.
var ErrDimensionMismatch = errors.New("collection vector size mismatch")

// EnsureCollection makes sure the collection exists with the given vector
// size. A mismatching collection is dropped and recreated when
// recreateIfMismatch is set, otherwise the call fails hard.
func (s *Store) EnsureCollection(ctx context.Context, dimension int, recreateIfMismatch bool) error {
	if dimension <= 0 {
		return errors.New("invalid vector dimension")
	}

	current, exists, err := s.collectionDimension(ctx)
	if err != nil {
		return err
	}

	if exists {
		if current == dimension {
			return nil
		}
		if !recreateIfMismatch {
			return fmt.Errorf("%w: existing=%d, new=%d", ErrDimensionMismatch, current, dimension)
		}
		logx.Warn().Int("existing", current).Int("new", dimension).
			Str("collection", s.collection).Msg("recreating collection with new vector size")
		if err := s.deleteCollection(ctx); err != nil {
			return err
		}
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

// collectionDimension reads the configured vector size of the collection.
// A 404 means the collection does not exist yet.
func (s *Store) collectionDimension(ctx context.Context) (int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return 0, false, err
	}
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, false, errx.WrapVectorStore(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, false, nil
	}
	if resp.StatusCode >= 300 {
		return 0, false, errx.WrapVectorStore(fmt.Errorf("qdrant GET collection failed: %s", resp.Status))
	}

	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return 0, false, errx.WrapVectorStore(err)
	}
	return info.Result.Config.Params.Vectors.Size, true, nil
}

func (s *Store) deleteCollection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return errx.WrapVectorStore(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errx.WrapVectorStore(fmt.Errorf("qdrant DELETE collection failed: %s", resp.Status))
	}
	return nil
}

// Upsert writes points into the collection, waiting for them to be indexed.
func (s *Store) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

// Search runs a similarity search and returns hits in rank order.
func (s *Store) Search(ctx context.Context, vector []float32, topK int, scoreThreshold float64) ([]ScoredPoint, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if scoreThreshold > 0 {
		req["score_threshold"] = scoreThreshold
	}
	var resp struct {
		Result []ScoredPoint `json:"result"`
	}
	err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (s *Store) auth(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *Store) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return errx.WrapVectorStore(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errx.WrapVectorStore(fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status))
	}
	return nil
}

func (s *Store) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return errx.WrapVectorStore(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errx.WrapVectorStore(fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
