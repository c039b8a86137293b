// Package forecast consults the Open-Meteo API for day-of-event weather.
//
// The service deliberately never returns an error to callers. Reminders go
// out whether or not the almanac cooperates, so failures degrade to a polite
// fallback sentence instead.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"
)

// Fallback sentences for the cases where no real forecast is available.
const (
	TooDistantReport  = "The date is too distant for a reliable meteorological report."
	MalformedReport   = "I find myself unable to retrieve a detailed weather forecast for this date."
	UnavailableReport = "My sincerest apologies, I am unable to consult the almanac at this present time."
)

// maxForecastDays caps the horizon below Open-Meteo's 16-day limit.
const maxForecastDays = 14

// Service produces a one-sentence weather summary for a given date.
type Service interface {
	Summary(ctx context.Context, date time.Time) string
}

// Config holds the forecast location and endpoint.
type Config struct {
	BaseURL   string // defaults to the public Open-Meteo endpoint
	Latitude  float64
	Longitude float64
	Timezone  string
	Client    *http.Client
}

// OpenMeteo implements Service against the Open-Meteo forecast API.
type OpenMeteo struct {
	baseURL   string
	latitude  float64
	longitude float64
	timezone  string
	client    *http.Client
	logger    *slog.Logger
}

// NewOpenMeteo creates a forecast service. Zero-value config fields fall back
// to the public endpoint and Stockholm coordinates.
func NewOpenMeteo(cfg Config, logger *slog.Logger) *OpenMeteo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.open-meteo.com/v1/forecast"
	}
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		cfg.Latitude = 59.3293
		cfg.Longitude = 18.0686
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Stockholm"
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenMeteo{
		baseURL:   cfg.BaseURL,
		latitude:  cfg.Latitude,
		longitude: cfg.Longitude,
		timezone:  cfg.Timezone,
		client:    cfg.Client,
		logger:    logger,
	}
}

type dailyForecast struct {
	Daily struct {
		WeatherCode []int     `json:"weathercode"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Summary returns a human-readable forecast sentence for the date.
func (o *OpenMeteo) Summary(ctx context.Context, date time.Time) string {
	daysOut := calendarDaysBetween(time.Now(), date)
	if daysOut < 0 || daysOut > maxForecastDays {
		return TooDistantReport
	}

	day := date.Format("2006-01-02")
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", o.latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", o.longitude))
	params.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min")
	params.Set("timezone", o.timezone)
	params.Set("start_date", day)
	params.Set("end_date", day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		o.logger.Error("forecast request build failed", "error", err)
		return UnavailableReport
	}

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Error("forecast fetch failed", "error", err)
		return UnavailableReport
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.logger.Error("forecast fetch returned non-OK status", "status", resp.StatusCode)
		return UnavailableReport
	}

	var forecast dailyForecast
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		o.logger.Error("forecast response decode failed", "error", err)
		return UnavailableReport
	}

	daily := forecast.Daily
	if len(daily.WeatherCode) == 0 || len(daily.TempMax) == 0 || len(daily.TempMin) == 0 {
		o.logger.Error("forecast response missing daily data", "date", day)
		return MalformedReport
	}

	description := DescribeWeatherCode(daily.WeatherCode[0])
	minTemp := int(math.Round(daily.TempMin[0]))
	maxTemp := int(math.Round(daily.TempMax[0]))

	return fmt.Sprintf("The forecast anticipates %s, with temperatures ranging from a low of %d°C to a high of %d°C.",
		description, minTemp, maxTemp)
}

// DescribeWeatherCode maps a WMO weather code to a readable phrase.
func DescribeWeatherCode(code int) string {
	conditions := map[int]string{
		0:  "perfectly clear skies",
		1:  "mainly clear skies",
		2:  "a pleasant smattering of clouds",
		3:  "a mostly clouded canopy",
		45: "the possibility of fog",
		48: "depositing rime fog",
		51: "a light drizzle",
		53: "a moderate drizzle",
		55: "a dense drizzle",
		56: "light, freezing drizzle",
		57: "dense, freezing drizzle",
		61: "a slight prospect of rain",
		63: "a moderate prospect of rain",
		65: "a heavy prospect of rain",
		66: "light, freezing rain",
		67: "heavy, freezing rain",
		71: "a light flurry of snow",
		73: "a moderate flurry of snow",
		75: "a heavy flurry of snow",
		77: "snow grains",
		80: "slight rain showers",
		81: "moderate rain showers",
		82: "violent rain showers",
		85: "slight snow showers",
		86: "heavy snow showers",
		95: "the dramatic possibility of a thunderstorm",
		96: "a thunderstorm with slight hail",
		99: "a thunderstorm with heavy hail",
	}
	if description, ok := conditions[code]; ok {
		return description
	}
	return "somewhat uncertain conditions"
}

// calendarDaysBetween counts whole calendar days from a to b, ignoring the
// time of day.
func calendarDaysBetween(a, b time.Time) int {
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}
