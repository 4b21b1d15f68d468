package climate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/lox/climatefuture/internal/httputil"
	"github.com/lox/climatefuture/internal/metrics"
	"github.com/lox/climatefuture/internal/models"
	"github.com/lox/climatefuture/internal/store"
)

const defaultBaseURL = "https://climate-api.open-meteo.com/v1/climate"

// Projection coverage requested from the climate API.
const (
	StartDate = "1950-01-01"
	EndDate   = "2050-12-31"
)

// ModelIDs are the climate models requested. The API suffixes daily variable
// keys with the model name; the first model's series is the one analyzed.
var ModelIDs = []string{"MRI_AGCM3_2_S", "EC_Earth3P_HR"}

var dailyVariables = []string{
	"temperature_2m_mean",
	"temperature_2m_max",
	"temperature_2m_min",
	"wind_speed_10m_max",
	"cloud_cover_mean",
	"shortwave_radiation_sum",
	"relative_humidity_2m_max",
	"relative_humidity_2m_min",
	"precipitation_sum",
	"snowfall_sum",
}

// Client fetches daily climate-model projections from the Open-Meteo climate
// API, with retry, a circuit breaker and an optional response cache.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *store.Cache
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a climate client. cache may be nil to disable caching.
func NewClient(cache *store.Cache) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "climate-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		baseURL: defaultBaseURL,
		client:  httputil.NewClient(),
		cache:   cache,
		circuit: cb,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(baseURL string, cache *store.Cache) *Client {
	c := NewClient(cache)
	c.baseURL = baseURL
	return c
}

// FetchDaily returns the full daily projection series (1950-2050) for a
// coordinate, in ascending date order.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64) ([]models.DailyRecord, error) {
	cacheKey := fmt.Sprintf("climate:%.4f,%.4f", lat, lon)
	if c.cache != nil {
		if body, ok := c.cache.Get(cacheKey); ok {
			metrics.ClimateCacheHits.Inc()
			return parseDaily(body)
		}
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("start_date", StartDate)
	params.Set("end_date", EndDate)
	params.Set("models", strings.Join(ModelIDs, ","))
	params.Set("daily", strings.Join(dailyVariables, ","))
	u := c.baseURL + "?" + params.Encode()

	var body []byte
	operation := func() error {
		_, err := c.circuit.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
			}

			start := time.Now()
			resp, err := c.client.Do(req)
			metrics.ClimateAPILatency.Observe(time.Since(start).Seconds())
			if err != nil {
				return nil, fmt.Errorf("fetch climate data: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, fmt.Errorf("fetch climate data: status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return nil, backoff.Permanent(fmt.Errorf("fetch climate data: status %d: %s", resp.StatusCode, string(b)))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			return nil, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		metrics.ClimateAPICallsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ClimateAPICallsTotal.WithLabelValues("ok").Inc()

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, body); err != nil {
			// Cache failures degrade to refetching, never the request.
			metrics.ClimateAPICallsTotal.WithLabelValues("cache_write_error").Inc()
		}
	}

	return parseDaily(body)
}

type dailyResponse struct {
	Daily map[string]json.RawMessage `json:"daily"`
}

// parseDaily decodes the daily arrays into records. Variable keys may be
// plain or suffixed with a model name; the first configured model wins.
// Null values become NaN and propagate through aggregation untouched.
func parseDaily(body []byte) ([]models.DailyRecord, error) {
	var data dailyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if data.Daily == nil {
		return nil, errors.New("no daily data in response")
	}

	rawTime, ok := data.Daily["time"]
	if !ok {
		return nil, errors.New("daily response missing time axis")
	}
	var dates []string
	if err := json.Unmarshal(rawTime, &dates); err != nil {
		return nil, fmt.Errorf("unmarshal time axis: %w", err)
	}

	series := make(map[string][]float64, len(dailyVariables))
	for _, name := range dailyVariables {
		vals, err := variableSeries(data.Daily, name, len(dates))
		if err != nil {
			return nil, err
		}
		series[name] = vals
	}

	records := make([]models.DailyRecord, 0, len(dates))
	for i, ds := range dates {
		date, err := time.Parse("2006-01-02", ds)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", ds, err)
		}
		records = append(records, models.DailyRecord{
			Date:          date,
			TempMean:      series["temperature_2m_mean"][i],
			TempMax:       series["temperature_2m_max"][i],
			TempMin:       series["temperature_2m_min"][i],
			WindMax:       series["wind_speed_10m_max"][i],
			CloudCover:    series["cloud_cover_mean"][i],
			Radiation:     series["shortwave_radiation_sum"][i],
			HumidityMax:   series["relative_humidity_2m_max"][i],
			HumidityMin:   series["relative_humidity_2m_min"][i],
			Precipitation: series["precipitation_sum"][i],
			Snowfall:      series["snowfall_sum"][i],
		})
	}
	return records, nil
}

func variableSeries(daily map[string]json.RawMessage, name string, want int) ([]float64, error) {
	raw, ok := daily[name]
	if !ok {
		for _, model := range ModelIDs {
			if r, found := daily[name+"_"+model]; found {
				raw, ok = r, true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("daily response missing variable %q", name)
	}

	var ptrs []*float64
	if err := json.Unmarshal(raw, &ptrs); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", name, err)
	}
	if len(ptrs) != want {
		return nil, fmt.Errorf("variable %s has %d values, want %d", name, len(ptrs), want)
	}

	vals := make([]float64, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			vals[i] = math.NaN()
		} else {
			vals[i] = *p
		}
	}
	return vals, nil
}
