package models

import "time"

// Location is a geocoded place: the canonical name and coordinates returned
// by the geocoding collaborator for a free-text address.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DailyRecord is one calendar day of climate-model output at one location.
// Values are owned by the pipeline invocation that fetched them and are
// never mutated after parsing.
type DailyRecord struct {
	Date          time.Time `json:"date"` // UTC midnight
	TempMean      float64   `json:"temperature_2m_mean"`
	TempMax       float64   `json:"temperature_2m_max"`
	TempMin       float64   `json:"temperature_2m_min"`
	WindMax       float64   `json:"wind_speed_10m_max"`
	CloudCover    float64   `json:"cloud_cover_mean"`
	Radiation     float64   `json:"shortwave_radiation_sum"`
	HumidityMax   float64   `json:"relative_humidity_2m_max"`
	HumidityMin   float64   `json:"relative_humidity_2m_min"`
	Precipitation float64   `json:"precipitation_sum"`
	Snowfall      float64   `json:"snowfall_sum"`
}

// MonthlyRecord is one calendar month's aggregate of DailyRecords.
// Intensity-like fields (temperature, wind, cloud, humidity) are monthly
// means; accumulation-like fields (radiation, precipitation, snowfall) are
// monthly sums.
type MonthlyRecord struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"` // 1-12
	TempMean      float64 `json:"temperature_2m_mean"`
	TempMax       float64 `json:"temperature_2m_max"`
	TempMin       float64 `json:"temperature_2m_min"`
	WindMax       float64 `json:"wind_speed_10m_max"`
	CloudCover    float64 `json:"cloud_cover_mean"`
	Radiation     float64 `json:"shortwave_radiation_sum"`
	HumidityMax   float64 `json:"relative_humidity_2m_max"`
	HumidityMin   float64 `json:"relative_humidity_2m_min"`
	Precipitation float64 `json:"precipitation_sum"`
	Snowfall      float64 `json:"snowfall_sum"`
}

// Date returns the record's month as a UTC date (first of the month).
func (m MonthlyRecord) Date() time.Time {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
}
