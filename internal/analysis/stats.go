package analysis

import (
	"math"
	"sort"

	"github.com/lox/climatefuture/internal/models"
)

// Season is one of the four meteorological seasons used for the seasonal
// breakdown.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// SeasonOrder gives a stable iteration order over the seasonal map.
var SeasonOrder = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}

var seasonMonths = map[Season][]int{
	SeasonWinter: {12, 1, 2},
	SeasonSpring: {3, 4, 5},
	SeasonSummer: {6, 7, 8},
	SeasonAutumn: {9, 10, 11},
}

// Means holds the average-based metrics of a window.
type Means struct {
	TempMean     float64 `json:"temp_mean"`
	CloudCover   float64 `json:"cloud_cover"`
	Radiation    float64 `json:"radiation"`
	HumidityMean float64 `json:"humidity_mean"`
}

// Extremes holds the per-field extreme values of a window. Each field is
// taken independently over the whole window, not from per-row tuples.
type Extremes struct {
	TempMax     float64 `json:"temp_max"`
	TempMin     float64 `json:"temp_min"`
	WindMax     float64 `json:"wind_max"`
	HumidityMax float64 `json:"humidity_max"`
	HumidityMin float64 `json:"humidity_min"`
}

// Cumulative holds annualized accumulation totals and single-month maxima.
type Cumulative struct {
	PrecipAnnualMean float64 `json:"precip_annual_mean"`
	PrecipMonthlyMax float64 `json:"precip_monthly_max"`
	SnowAnnualMean   float64 `json:"snow_annual_mean"`
	SnowMonthlyMax   float64 `json:"snow_monthly_max"`
}

// ExtremeEvents holds annualized counts of months exceeding the window's own
// 95th percentile. The divisor is the requested window size in years, not
// the number of years actually present; a truncated window near the data
// boundary therefore under-reports the rate.
type ExtremeEvents struct {
	HotDaysAnnual   float64 `json:"hot_days_annual"`
	HeavyRainAnnual float64 `json:"heavy_rain_annual"`
	HighWindAnnual  float64 `json:"high_wind_annual"`
}

// SeasonStats is the per-season breakdown. PrecipTotal is an approximate
// seasonal total: mean monthly precipitation times three, which conflates
// distinct years' months in a multi-year window.
type SeasonStats struct {
	TempMean    float64 `json:"temp_mean"`
	TempMax     float64 `json:"temp_max"`
	TempMin     float64 `json:"temp_min"`
	PrecipTotal float64 `json:"precip_total"`
	WindMax     float64 `json:"wind_max"`
}

// WindowStatistics is a read-only snapshot derived from a non-empty window.
// It is built in one pass and never mutated.
type WindowStatistics struct {
	Means         Means                  `json:"means"`
	Extremes      Extremes               `json:"extremes"`
	Cumulative    Cumulative             `json:"cumulative"`
	ExtremeEvents ExtremeEvents          `json:"extreme_events"`
	Seasonal      map[Season]SeasonStats `json:"seasonal"`
}

// ComputeWindowStatistics derives the four statistic groups and the seasonal
// breakdown from a window. An empty window has no defined statistics and
// returns nil; callers must treat that as "no data available" rather than
// dereferencing.
func ComputeWindowStatistics(w Window) *WindowStatistics {
	if w.Empty() {
		return nil
	}

	rows := w.Records

	tempMean := field(rows, func(r models.MonthlyRecord) float64 { return r.TempMean })
	tempMax := field(rows, func(r models.MonthlyRecord) float64 { return r.TempMax })
	tempMin := field(rows, func(r models.MonthlyRecord) float64 { return r.TempMin })
	windMax := field(rows, func(r models.MonthlyRecord) float64 { return r.WindMax })
	cloud := field(rows, func(r models.MonthlyRecord) float64 { return r.CloudCover })
	radiation := field(rows, func(r models.MonthlyRecord) float64 { return r.Radiation })
	humMax := field(rows, func(r models.MonthlyRecord) float64 { return r.HumidityMax })
	humMin := field(rows, func(r models.MonthlyRecord) float64 { return r.HumidityMin })
	precip := field(rows, func(r models.MonthlyRecord) float64 { return r.Precipitation })
	snow := field(rows, func(r models.MonthlyRecord) float64 { return r.Snowfall })

	stats := &WindowStatistics{
		Means: Means{
			TempMean:   mean(tempMean),
			CloudCover: mean(cloud),
			Radiation:  mean(radiation),
			// Mean of the two column means, not a mean of per-row
			// averages. The order matters for exact compatibility.
			HumidityMean: (mean(humMax) + mean(humMin)) / 2,
		},
		Extremes: Extremes{
			TempMax:     maxOf(tempMax),
			TempMin:     minOf(tempMin),
			WindMax:     maxOf(windMax),
			HumidityMax: maxOf(humMax),
			HumidityMin: minOf(humMin),
		},
	}

	// Cumulative: yearly sums first, then the mean across years.
	precipByYear := make(map[int]float64)
	snowByYear := make(map[int]float64)
	for _, r := range rows {
		precipByYear[r.Year] += r.Precipitation
		snowByYear[r.Year] += r.Snowfall
	}
	stats.Cumulative = Cumulative{
		PrecipAnnualMean: mean(yearSums(precipByYear)),
		PrecipMonthlyMax: maxOf(precip),
		SnowAnnualMean:   mean(yearSums(snowByYear)),
		SnowMonthlyMax:   maxOf(snow),
	}

	// Extreme events: thresholds are the window's own 95th percentile, not
	// drawn from any external distribution.
	temp95 := percentile(tempMax, 0.95)
	precip95 := percentile(precip, 0.95)
	wind95 := percentile(windMax, 0.95)
	size := float64(w.SizeYears)
	stats.ExtremeEvents = ExtremeEvents{
		HotDaysAnnual:   float64(countAbove(tempMax, temp95)) / size,
		HeavyRainAnnual: float64(countAbove(precip, precip95)) / size,
		HighWindAnnual:  float64(countAbove(windMax, wind95)) / size,
	}

	stats.Seasonal = make(map[Season]SeasonStats, len(SeasonOrder))
	for _, season := range SeasonOrder {
		var bucket []models.MonthlyRecord
		for _, r := range rows {
			if inSeason(r.Month, season) {
				bucket = append(bucket, r)
			}
		}
		sTempMean := field(bucket, func(r models.MonthlyRecord) float64 { return r.TempMean })
		sTempMax := field(bucket, func(r models.MonthlyRecord) float64 { return r.TempMax })
		sTempMin := field(bucket, func(r models.MonthlyRecord) float64 { return r.TempMin })
		sWind := field(bucket, func(r models.MonthlyRecord) float64 { return r.WindMax })
		sPrecip := field(bucket, func(r models.MonthlyRecord) float64 { return r.Precipitation })
		stats.Seasonal[season] = SeasonStats{
			TempMean:    mean(sTempMean),
			TempMax:     maxOf(sTempMax),
			TempMin:     minOf(sTempMin),
			PrecipTotal: mean(sPrecip) * 3, // approximate seasonal total
			WindMax:     maxOf(sWind),
		}
	}

	return stats
}

func inSeason(month int, season Season) bool {
	for _, m := range seasonMonths[season] {
		if m == month {
			return true
		}
	}
	return false
}

func field(rows []models.MonthlyRecord, get func(models.MonthlyRecord) float64) []float64 {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = get(r)
	}
	return vals
}

func yearSums(byYear map[int]float64) []float64 {
	vals := make([]float64, 0, len(byYear))
	for _, v := range byYear {
		vals = append(vals, v)
	}
	return vals
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func maxOf(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// percentile computes the q-th quantile with linear interpolation between
// order statistics.
func percentile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

func countAbove(vals []float64, threshold float64) int {
	n := 0
	for _, v := range vals {
		if v > threshold {
			n++
		}
	}
	return n
}
