package api

import (
	"fmt"
	"time"

	"github.com/lox/climatefuture/internal/analysis"
	"github.com/lox/climatefuture/internal/models"
	"github.com/lox/climatefuture/internal/narrative"
)

type indexData struct {
	Years   []int
	MinYear int
	MaxYear int
	Error   string
}

// metricRow is one line of the current/future comparison table.
type metricRow struct {
	Label   string
	Unit    string
	Current float64
	Future  float64
	Change  float64
}

type seasonRow struct {
	Season       string
	TempChange   float64
	PrecipChange float64
}

type resultData struct {
	Location  *models.Location
	Year      int
	Window    int
	Metrics   []metricRow
	Events    []metricRow
	Seasons   []seasonRow
	Narrative []narrativeSection

	TempChartURL   string
	PrecipChartURL string
}

func newResultData(outcome *analysisOutcome) resultData {
	current, future := outcome.Analysis.Current, outcome.Analysis.Future
	changes := outcome.Analysis.Changes

	data := resultData{
		Location: outcome.Location,
		Year:     outcome.Year,
		Window:   outcome.Window,
		Metrics: []metricRow{
			{"Mean temperature", "°C", current.Means.TempMean, future.Means.TempMean, changes["means_temp_mean_change"]},
			{"Hottest month maximum", "°C", current.Extremes.TempMax, future.Extremes.TempMax, changes["extremes_temp_max_change"]},
			{"Coldest month minimum", "°C", current.Extremes.TempMin, future.Extremes.TempMin, changes["extremes_temp_min_change"]},
			{"Relative humidity", "%", current.Means.HumidityMean, future.Means.HumidityMean, changes["means_humidity_mean_change"]},
			{"Cloud cover", "%", current.Means.CloudCover, future.Means.CloudCover, changes["means_cloud_cover_change"]},
			{"Peak wind speed", "km/h", current.Extremes.WindMax, future.Extremes.WindMax, changes["extremes_wind_max_change"]},
			{"Annual precipitation", "mm", current.Cumulative.PrecipAnnualMean, future.Cumulative.PrecipAnnualMean, changes["cumulative_precip_annual_mean_change"]},
			{"Annual snowfall", "cm", current.Cumulative.SnowAnnualMean, future.Cumulative.SnowAnnualMean, changes["cumulative_snow_annual_mean_change"]},
		},
		Events: []metricRow{
			{"Extreme heat months", "/yr", current.ExtremeEvents.HotDaysAnnual, future.ExtremeEvents.HotDaysAnnual, changes["extreme_events_hot_days_annual_change"]},
			{"Heavy rain months", "/yr", current.ExtremeEvents.HeavyRainAnnual, future.ExtremeEvents.HeavyRainAnnual, changes["extreme_events_heavy_rain_annual_change"]},
			{"High wind months", "/yr", current.ExtremeEvents.HighWindAnnual, future.ExtremeEvents.HighWindAnnual, changes["extreme_events_high_wind_annual_change"]},
		},
		Narrative: parseNarrativeSections(outcome.Narrative),

		TempChartURL:   chartURL("temperature", outcome.Location),
		PrecipChartURL: chartURL("precipitation", outcome.Location),
	}

	for _, season := range analysis.SeasonOrder {
		prefix := "seasonal_" + string(season) + "_"
		data.Seasons = append(data.Seasons, seasonRow{
			Season:       string(season),
			TempChange:   changes[prefix+"temp_mean_change"],
			PrecipChange: changes[prefix+"precip_total_change"],
		})
	}
	return data
}

func chartURL(kind string, loc *models.Location) string {
	return fmt.Sprintf("/charts/%s.png?lat=%.4f&lon=%.4f", kind, loc.Latitude, loc.Longitude)
}

func buildPrompt(loc *models.Location, req analysisRequest, result *analysis.AnalysisResult, now time.Time) (string, error) {
	return narrative.BuildPrompt(narrative.PromptInput{
		LocationName: loc.Name,
		TargetYear:   req.Year,
		CurrentYear:  now.Year(),
		WindowYears:  req.Window,
		Current:      result.Current,
		Future:       result.Future,
		Changes:      result.Changes,
	})
}
