package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(base, geo string) Config {
	return Config{
		APIKey:      "test-key",
		Units:       "metric",
		BaseURL:     base,
		GeoURL:      geo,
		TimeoutSecs: 2,
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
	}
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{
			"name": "London",
			"sys": {"country": "GB"},
			"main": {"temp": 10, "feels_like": 8, "humidity": 80},
			"weather": [{"description": "cloudy"}],
			"wind": {"speed": 5}
		}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, srv.URL))
	rec, err := c.Fetch(context.Background(), "London")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "London", rec.City)
	assert.Equal(t, "GB", rec.Country)
	assert.Equal(t, 10.0, rec.Temp)
	assert.Equal(t, 8.0, rec.FeelsLike)
	assert.Equal(t, "cloudy", rec.Description)
	assert.Equal(t, 80, rec.Humidity)
	assert.Equal(t, 5.0, rec.WindSpeed)
}

func TestFetchHTTPErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, srv.URL))
	rec, err := c.Fetch(context.Background(), "Nowhereville")
	assert.Error(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestFetchRetriesTransportErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			// Kill the connection mid-flight so the client sees a
			// transport error rather than a status code.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("response writer does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatal(err)
			}
			conn.Close()
			return
		}
		w.Write([]byte(`{
			"name": "London",
			"sys": {"country": "GB"},
			"main": {"temp": 10, "feels_like": 8, "humidity": 80},
			"weather": [{"description": "cloudy"}],
			"wind": {"speed": 5}
		}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, srv.URL))
	rec, err := c.Fetch(context.Background(), "London")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		hj := w.(http.Hijacker)
		conn, _, _ := hj.Hijack()
		conn.Close()
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, srv.URL))
	rec, err := c.Fetch(context.Background(), "London")
	assert.Error(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearchCities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Hydrabad", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		w.Write([]byte(`[
			{"name": "Hyderabad", "country": "IN", "lat": 17.36, "lon": 78.47},
			{"name": "Hyderabad", "country": "PK", "lat": 25.39, "lon": 68.37}
		]`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, srv.URL))
	got := c.SearchCities(context.Background(), "Hydrabad", 3)
	require.Len(t, got, 2)
	assert.Equal(t, "Hyderabad", got[0].Name)
	assert.Equal(t, "IN", got[0].Country)
	assert.Equal(t, "PK", got[1].Country)
}

func TestSearchCitiesFailureReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, srv.URL))
	assert.Empty(t, c.SearchCities(context.Background(), "anything", 3))
}
