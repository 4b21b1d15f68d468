package analysis

import "fmt"

// ErrShapeMismatch reports that the current and future statistic structures
// disagree in their key sets. This is a programming-contract violation and
// fails the whole request rather than silently dropping keys.
type ErrShapeMismatch struct {
	Key string
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("statistics shape mismatch at %q", e.Key)
}

// ChangeMap is a flat mapping from a traversal path through WindowStatistics
// (joined with underscores, suffixed "_change") to the future-minus-current
// delta for that leaf.
type ChangeMap map[string]float64

// Diff walks two same-shaped statistic snapshots in lock-step and emits one
// delta per leaf. The emitted key set equals the leaf key set of either input.
func Diff(current, future *WindowStatistics) (ChangeMap, error) {
	changes := make(ChangeMap)

	diffMeans(changes, "means_", current.Means, future.Means)
	diffExtremes(changes, "extremes_", current.Extremes, future.Extremes)
	diffCumulative(changes, "cumulative_", current.Cumulative, future.Cumulative)
	diffEvents(changes, "extreme_events_", current.ExtremeEvents, future.ExtremeEvents)

	if len(current.Seasonal) != len(future.Seasonal) {
		return nil, &ErrShapeMismatch{Key: "seasonal"}
	}
	for _, season := range SeasonOrder {
		cur, okCur := current.Seasonal[season]
		fut, okFut := future.Seasonal[season]
		if okCur != okFut {
			return nil, &ErrShapeMismatch{Key: "seasonal_" + string(season)}
		}
		if !okCur {
			continue
		}
		prefix := "seasonal_" + string(season) + "_"
		changes[prefix+"temp_mean_change"] = fut.TempMean - cur.TempMean
		changes[prefix+"temp_max_change"] = fut.TempMax - cur.TempMax
		changes[prefix+"temp_min_change"] = fut.TempMin - cur.TempMin
		changes[prefix+"precip_total_change"] = fut.PrecipTotal - cur.PrecipTotal
		changes[prefix+"wind_max_change"] = fut.WindMax - cur.WindMax
	}

	return changes, nil
}

func diffMeans(c ChangeMap, prefix string, cur, fut Means) {
	c[prefix+"temp_mean_change"] = fut.TempMean - cur.TempMean
	c[prefix+"cloud_cover_change"] = fut.CloudCover - cur.CloudCover
	c[prefix+"radiation_change"] = fut.Radiation - cur.Radiation
	c[prefix+"humidity_mean_change"] = fut.HumidityMean - cur.HumidityMean
}

func diffExtremes(c ChangeMap, prefix string, cur, fut Extremes) {
	c[prefix+"temp_max_change"] = fut.TempMax - cur.TempMax
	c[prefix+"temp_min_change"] = fut.TempMin - cur.TempMin
	c[prefix+"wind_max_change"] = fut.WindMax - cur.WindMax
	c[prefix+"humidity_max_change"] = fut.HumidityMax - cur.HumidityMax
	c[prefix+"humidity_min_change"] = fut.HumidityMin - cur.HumidityMin
}

func diffCumulative(c ChangeMap, prefix string, cur, fut Cumulative) {
	c[prefix+"precip_annual_mean_change"] = fut.PrecipAnnualMean - cur.PrecipAnnualMean
	c[prefix+"precip_monthly_max_change"] = fut.PrecipMonthlyMax - cur.PrecipMonthlyMax
	c[prefix+"snow_annual_mean_change"] = fut.SnowAnnualMean - cur.SnowAnnualMean
	c[prefix+"snow_monthly_max_change"] = fut.SnowMonthlyMax - cur.SnowMonthlyMax
}

func diffEvents(c ChangeMap, prefix string, cur, fut ExtremeEvents) {
	c[prefix+"hot_days_annual_change"] = fut.HotDaysAnnual - cur.HotDaysAnnual
	c[prefix+"heavy_rain_annual_change"] = fut.HeavyRainAnnual - cur.HeavyRainAnnual
	c[prefix+"high_wind_annual_change"] = fut.HighWindAnnual - cur.HighWindAnnual
}
