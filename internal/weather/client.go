package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ai-rag-weather/server/internal/bot/model"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

// Config holds the OpenWeatherMap settings, loaded from the environment.
type Config struct {
	APIKey      string        `envconfig:"OPENWEATHER_API_KEY" required:"true"`
	Units       string        `envconfig:"OPENWEATHER_UNITS" default:"metric"`
	BaseURL     string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5/weather"`
	GeoURL      string        `envconfig:"OPENWEATHER_GEO_URL" default:"https://api.openweathermap.org/geo/1.0/direct"`
	TimeoutSecs int           `envconfig:"OPENWEATHER_TIMEOUT_SECS" default:"5"`
	MaxAttempts int           `envconfig:"OPENWEATHER_MAX_ATTEMPTS" default:"3"`
	BackoffBase time.Duration `envconfig:"OPENWEATHER_BACKOFF_BASE" default:"500ms"`
}

// Client talks to the OpenWeatherMap current-weather and geocoding
// endpoints. Transport-level failures are retried with exponential backoff;
// HTTP error statuses are not retried and surface as "no record".
type Client struct {
	cfg Config
	hc  *http.Client
}

func New(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: timeout},
	}
}

// currentResponse mirrors the subset of the OpenWeatherMap payload we use.
type currentResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch retrieves current weather for a city. It returns (nil, err) both
// when retries are exhausted and when the API answers with an error status;
// callers decide what a missing record means.
func (c *Client) Fetch(ctx context.Context, city string) (*model.WeatherRecord, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", c.cfg.Units)

	body, err := c.getWithRetry(ctx, c.cfg.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var data currentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		logx.Error().Err(err).Str("city", city).Msg("weather response decode failed")
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if len(data.Weather) == 0 {
		return nil, fmt.Errorf("weather response for %q has no condition block", city)
	}

	return &model.WeatherRecord{
		City:        data.Name,
		Country:     data.Sys.Country,
		Temp:        data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Description: data.Weather[0].Description,
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
	}, nil
}

// SearchCities queries the geocoding endpoint for names similar to the
// failed lookup. Failures are logged and yield an empty slice.
func (c *Client) SearchCities(ctx context.Context, query string, limit int) []model.CitySuggestion {
	if limit <= 0 {
		limit = 3
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("appid", c.cfg.APIKey)

	body, err := c.getWithRetry(ctx, c.cfg.GeoURL+"?"+q.Encode())
	if err != nil {
		logx.Warn().Err(err).Str("query", query).Msg("geocoding lookup failed")
		return nil
	}

	var raw []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		logx.Error().Err(err).Str("query", query).Msg("geocoding response decode failed")
		return nil
	}

	suggestions := make([]model.CitySuggestion, 0, len(raw))
	for _, r := range raw {
		suggestions = append(suggestions, model.CitySuggestion{Name: r.Name, Country: r.Country})
	}
	return suggestions
}

var _ model.WeatherGateway = (*Client)(nil)

// getWithRetry performs a GET with up to MaxAttempts tries. Only transport
// errors (connect failures, timeouts, protocol errors) are retried; an HTTP
// error status comes back from a live server and is returned immediately.
func (c *Client) getWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.cfg.BackoffBase * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			logx.Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", c.cfg.MaxAttempts).
				Msg("weather API request failed")
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			logx.Warn().Err(readErr).Int("attempt", attempt+1).Msg("weather API read failed")
			continue
		}
		if resp.StatusCode >= 400 {
			logx.Error().Int("status", resp.StatusCode).Str("url", resp.Request.URL.Path).
				Msg("weather API error status")
			return nil, fmt.Errorf("weather API status %d", resp.StatusCode)
		}
		return body, nil
	}
	return nil, fmt.Errorf("weather API unreachable after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}
