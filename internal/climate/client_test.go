package climate

import (
	"context"
	"database/sql"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lox/climatefuture/internal/store"

	_ "modernc.org/sqlite"
)

const sampleBody = `{
	"daily": {
		"time": ["2020-01-01", "2020-01-02"],
		"temperature_2m_mean_MRI_AGCM3_2_S": [5.1, 6.2],
		"temperature_2m_max_MRI_AGCM3_2_S": [9.0, 10.5],
		"temperature_2m_min_MRI_AGCM3_2_S": [1.0, 2.0],
		"wind_speed_10m_max_MRI_AGCM3_2_S": [20.0, 25.0],
		"cloud_cover_mean_MRI_AGCM3_2_S": [70.0, 60.0],
		"shortwave_radiation_sum_MRI_AGCM3_2_S": [4.5, 5.5],
		"relative_humidity_2m_max_MRI_AGCM3_2_S": [95.0, 90.0],
		"relative_humidity_2m_min_MRI_AGCM3_2_S": [60.0, 55.0],
		"precipitation_sum_MRI_AGCM3_2_S": [2.0, 0.0],
		"snowfall_sum_MRI_AGCM3_2_S": [0.0, null]
	}
}`

func TestFetchDaily_ParsesModelSuffixedKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_date") != StartDate || q.Get("end_date") != EndDate {
			t.Errorf("date range %s..%s", q.Get("start_date"), q.Get("end_date"))
		}
		if q.Get("models") == "" {
			t.Error("expected models parameter")
		}
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, nil)
	records, err := c.FetchDaily(context.Background(), -36.794, 146.977)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if !first.Date.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date %v", first.Date)
	}
	if first.TempMean != 5.1 || first.TempMax != 9.0 || first.Precipitation != 2.0 {
		t.Errorf("unexpected values: %+v", first)
	}

	// Nulls come through as NaN rather than zero.
	if !math.IsNaN(records[1].Snowfall) {
		t.Errorf("snowfall %v, want NaN", records[1].Snowfall)
	}
}

func TestFetchDaily_UsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	cache := store.NewCache(db, time.Hour)
	if err := cache.Migrate(); err != nil {
		t.Fatal(err)
	}

	c := NewClientWithBaseURL(srv.URL, cache)
	if _, err := c.FetchDaily(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchDaily(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1", calls)
	}

	// A different coordinate is a different cache key.
	if _, err := c.FetchDaily(context.Background(), 3, 4); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("upstream called %d times, want 2", calls)
	}
}

func TestFetchDaily_MissingVariable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily":{"time":["2020-01-01"]}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, nil)
	if _, err := c.FetchDaily(context.Background(), 1, 2); err == nil {
		t.Fatal("expected error for missing variables")
	}
}

func TestFetchDaily_ClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad coordinates", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, nil)
	if _, err := c.FetchDaily(context.Background(), 1, 2); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1 (400 is permanent)", calls)
	}
}
