package narrative

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/lox/climatefuture/internal/analysis"
)

// PromptInput carries everything the prompt template needs. The builder only
// formats; it never recomputes statistics.
type PromptInput struct {
	LocationName string
	TargetYear   int
	CurrentYear  int
	WindowYears  int
	Current      *analysis.WindowStatistics
	Future       *analysis.WindowStatistics
	Changes      analysis.ChangeMap
}

// promptValues is the fixed, fully-formatted value struct rendered into the
// template. Keeping it statically typed means a missing placeholder is a
// compile-or-test failure, not a silent blank in the prompt.
type promptValues struct {
	Location    string
	TargetYear  int
	CurrentYear int
	WindowYears int

	CurrentTempMean   string
	FutureTempMean    string
	TempMeanChange    string
	CurrentTempMax    string
	FutureTempMax     string
	CurrentTempMin    string
	FutureTempMin     string
	CurrentHumidity   string
	FutureHumidity    string
	CurrentCloudCover string
	FutureCloudCover  string
	CurrentRadiation  string
	FutureRadiation   string
	CurrentWindMax    string
	FutureWindMax     string

	CurrentPrecipAnnual string
	FuturePrecipAnnual  string
	PrecipAnnualChange  string
	CurrentSnowAnnual   string
	FutureSnowAnnual    string

	CurrentHotDays   string
	FutureHotDays    string
	CurrentHeavyRain string
	FutureHeavyRain  string
	CurrentHighWind  string
	FutureHighWind   string

	SeasonalChanges []seasonChange
}

type seasonChange struct {
	Season       string
	TempChange   string
	PrecipChange string
}

const promptTemplate = `You are an expert climate impact analyst with deep knowledge of both climate science and local community dynamics. Your role is to translate climate data into meaningful, accessible narratives about how climate change will affect specific locations and their inhabitants.

CORE OBJECTIVE:
Create a clear, factual and impactful description of how climate change will affect daily life in {{.Location}} by {{.TargetYear}}, based on climate model projections (MRI_AGCM3_2_S and EC_Earth3P_HR). Focus on making the impacts tangible and relevant to ordinary people's lives while maintaining scientific accuracy.

DATA:
All figures compare a {{.WindowYears}}-year window around {{.CurrentYear}} (current) with a {{.WindowYears}}-year window around {{.TargetYear}} (future).

Temperature:
- Mean temperature: {{.CurrentTempMean}} now, {{.FutureTempMean}} by {{.TargetYear}} (change {{.TempMeanChange}})
- Hottest month maximum: {{.CurrentTempMax}} now, {{.FutureTempMax}} in the future
- Coldest month minimum: {{.CurrentTempMin}} now, {{.FutureTempMin}} in the future

Moisture and atmosphere:
- Relative humidity: {{.CurrentHumidity}} now, {{.FutureHumidity}} in the future
- Cloud cover: {{.CurrentCloudCover}} now, {{.FutureCloudCover}} in the future
- Solar radiation: {{.CurrentRadiation}} MJ/m2 now, {{.FutureRadiation}} MJ/m2 in the future
- Peak wind speed: {{.CurrentWindMax}} km/h now, {{.FutureWindMax}} km/h in the future

Precipitation:
- Annual precipitation: {{.CurrentPrecipAnnual}} mm now, {{.FuturePrecipAnnual}} mm in the future (change {{.PrecipAnnualChange}} mm)
- Annual snowfall: {{.CurrentSnowAnnual}} cm now, {{.FutureSnowAnnual}} cm in the future

Seasonal shifts (future minus current):
{{- range .SeasonalChanges}}
- {{.Season}}: temperature {{.TempChange}}, precipitation {{.PrecipChange}} mm
{{- end}}

Extreme events (months per year above the current 95th percentile):
- Extreme heat: {{.CurrentHotDays}} now, {{.FutureHotDays}} in the future
- Heavy rain: {{.CurrentHeavyRain}} now, {{.FutureHeavyRain}} in the future
- High wind: {{.CurrentHighWind}} now, {{.FutureHighWind}} in the future

OUTPUT STRUCTURE:
Structure your response using the following XML tags:

<weatherPatterns>Daily experienced weather changes: temperature patterns and extremes, precipitation changes, seasonal shifts, extreme weather events.</weatherPatterns>
<livingCosts>Financial implications: energy costs, insurance, infrastructure adaptation, resource availability.</livingCosts>
<healthImpacts>Health-related changes: temperature-related risks, air quality, disease vectors, mental health.</healthImpacts>
<environmentalChanges>Local environment: ecosystems, urban heat island effects where applicable, natural resources, visual and sensory changes.</environmentalChanges>
<agriculturalEffects>For rural areas: crop viability, growing seasons, adaptation, livestock.</agriculturalEffects>
<locationSpecific>Unique local considerations: coastal or mountain effects, geographic vulnerabilities, regional concerns.</locationSpecific>
<uncertaintyNotes>Uncertainties relevant to this location and time horizon: range of outcomes, local factors affecting certainty.</uncertaintyNotes>

TONE AND STYLE:
- Use clear, accessible language; explain technical terms briefly when needed.
- Start with observable changes, connect to practical implications, use concrete examples.
- Express uncertainty naturally without undermining clear trends.
- Use only well-established facts about the location; avoid speculation about specific local features not supported by the data.`

var prompt = template.Must(template.New("narrative").Parse(promptTemplate))

// BuildPrompt renders the analysis into the narrative prompt handed to the
// generation collaborator.
func BuildPrompt(in PromptInput) (string, error) {
	if in.Current == nil || in.Future == nil {
		return "", fmt.Errorf("prompt requires both current and future statistics")
	}

	values := promptValues{
		Location:    in.LocationName,
		TargetYear:  in.TargetYear,
		CurrentYear: in.CurrentYear,
		WindowYears: in.WindowYears,

		CurrentTempMean: degrees(in.Current.Means.TempMean),
		FutureTempMean:  degrees(in.Future.Means.TempMean),
		TempMeanChange:  signedDegrees(in.Changes["means_temp_mean_change"]),
		CurrentTempMax:  degrees(in.Current.Extremes.TempMax),
		FutureTempMax:   degrees(in.Future.Extremes.TempMax),
		CurrentTempMin:  degrees(in.Current.Extremes.TempMin),
		FutureTempMin:   degrees(in.Future.Extremes.TempMin),

		CurrentHumidity:   percent(in.Current.Means.HumidityMean),
		FutureHumidity:    percent(in.Future.Means.HumidityMean),
		CurrentCloudCover: percent(in.Current.Means.CloudCover),
		FutureCloudCover:  percent(in.Future.Means.CloudCover),
		CurrentRadiation:  whole(in.Current.Means.Radiation),
		FutureRadiation:   whole(in.Future.Means.Radiation),
		CurrentWindMax:    tenths(in.Current.Extremes.WindMax),
		FutureWindMax:     tenths(in.Future.Extremes.WindMax),

		CurrentPrecipAnnual: whole(in.Current.Cumulative.PrecipAnnualMean),
		FuturePrecipAnnual:  whole(in.Future.Cumulative.PrecipAnnualMean),
		PrecipAnnualChange:  signedWhole(in.Changes["cumulative_precip_annual_mean_change"]),
		CurrentSnowAnnual:   whole(in.Current.Cumulative.SnowAnnualMean),
		FutureSnowAnnual:    whole(in.Future.Cumulative.SnowAnnualMean),

		CurrentHotDays:   tenths(in.Current.ExtremeEvents.HotDaysAnnual),
		FutureHotDays:    tenths(in.Future.ExtremeEvents.HotDaysAnnual),
		CurrentHeavyRain: tenths(in.Current.ExtremeEvents.HeavyRainAnnual),
		FutureHeavyRain:  tenths(in.Future.ExtremeEvents.HeavyRainAnnual),
		CurrentHighWind:  tenths(in.Current.ExtremeEvents.HighWindAnnual),
		FutureHighWind:   tenths(in.Future.ExtremeEvents.HighWindAnnual),
	}

	for _, season := range analysis.SeasonOrder {
		prefix := "seasonal_" + string(season) + "_"
		values.SeasonalChanges = append(values.SeasonalChanges, seasonChange{
			Season:       titleCase(string(season)),
			TempChange:   signedDegrees(in.Changes[prefix+"temp_mean_change"]),
			PrecipChange: signedWhole(in.Changes[prefix+"precip_total_change"]),
		})
	}

	var b strings.Builder
	if err := prompt.Execute(&b, values); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// Temperature and wind are formatted to one decimal; precipitation, snow,
// humidity, cloud cover and radiation to whole numbers.

func degrees(v float64) string       { return fmt.Sprintf("%.1f°C", v) }
func signedDegrees(v float64) string { return fmt.Sprintf("%+.1f°C", v) }
func tenths(v float64) string        { return fmt.Sprintf("%.1f", v) }
func percent(v float64) string       { return fmt.Sprintf("%.0f%%", v) }
func whole(v float64) string         { return fmt.Sprintf("%.0f", v) }
func signedWhole(v float64) string   { return fmt.Sprintf("%+.0f", v) }

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
