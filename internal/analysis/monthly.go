package analysis

import (
	"github.com/lox/climatefuture/internal/models"
)

// AggregateMonthly reduces an ordered daily series to one record per calendar
// month present in the input, in chronological order. Temperature, wind,
// cloud cover and humidity are averaged; radiation, precipitation and
// snowfall are summed. An empty input yields an empty output.
func AggregateMonthly(daily []models.DailyRecord) []models.MonthlyRecord {
	if len(daily) == 0 {
		return nil
	}

	type acc struct {
		rec  models.MonthlyRecord
		days int
	}

	var months []*acc
	var cur *acc

	for _, d := range daily {
		y, m := d.Date.UTC().Year(), int(d.Date.UTC().Month())
		if cur == nil || cur.rec.Year != y || cur.rec.Month != m {
			cur = &acc{rec: models.MonthlyRecord{Year: y, Month: m}}
			months = append(months, cur)
		}
		cur.rec.TempMean += d.TempMean
		cur.rec.TempMax += d.TempMax
		cur.rec.TempMin += d.TempMin
		cur.rec.WindMax += d.WindMax
		cur.rec.CloudCover += d.CloudCover
		cur.rec.Radiation += d.Radiation
		cur.rec.HumidityMax += d.HumidityMax
		cur.rec.HumidityMin += d.HumidityMin
		cur.rec.Precipitation += d.Precipitation
		cur.rec.Snowfall += d.Snowfall
		cur.days++
	}

	out := make([]models.MonthlyRecord, 0, len(months))
	for _, a := range months {
		n := float64(a.days)
		a.rec.TempMean /= n
		a.rec.TempMax /= n
		a.rec.TempMin /= n
		a.rec.WindMax /= n
		a.rec.CloudCover /= n
		a.rec.HumidityMax /= n
		a.rec.HumidityMin /= n
		// Radiation, precipitation and snowfall stay as sums.
		out = append(out, a.rec)
	}
	return out
}
