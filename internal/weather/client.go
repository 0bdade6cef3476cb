// Package weather fetches daily forecasts from weatherapi.com.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.weatherapi.com/v1"

// The API serves between one and fourteen days.
const (
	MinDays = 1
	MaxDays = 14
)

// Client calls the forecast endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New constructs a Client. An empty baseURL selects DefaultBaseURL and a nil
// logger falls back to slog.Default().
func New(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "weather"),
	}
}

type forecastResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC          float64 `json:"maxtemp_c"`
				MinTempC          float64 `json:"mintemp_c"`
				AvgTempC          float64 `json:"avgtemp_c"`
				DailyChanceOfRain int     `json:"daily_chance_of_rain"`
				Condition         struct {
					Text string `json:"text"`
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Forecast returns the outlook for query, a city name or "lat,lng".
// days is clamped to [MinDays, MaxDays]. Failures are logged at warn and
// wrap domain.ErrUpstream.
func (c *Client) Forecast(ctx context.Context, query string, days int) (domain.Forecast, error) {
	if c.apiKey == "" {
		return domain.Forecast{}, fmt.Errorf("%w: weather API key not configured", domain.ErrUpstream)
	}
	days = min(max(days, MinDays), MaxDays)

	out, err := c.fetch(ctx, query, days)
	if err != nil {
		c.logger.WarnContext(ctx, "forecast request failed", "query", query, "days", days, "error", err)
		return domain.Forecast{}, err
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, query string, days int) (domain.Forecast, error) {
	params := url.Values{
		"key":    {c.apiKey},
		"q":      {query},
		"days":   {strconv.Itoa(days)},
		"aqi":    {"no"},
		"alerts": {"no"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast.json?"+params.Encode(), nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("weather.Client.Forecast: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: weather request: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: read weather response: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Forecast{}, fmt.Errorf("%w: weather API returned HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}

	var fr forecastResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: decode weather response: %v", domain.ErrUpstream, err)
	}

	out := domain.Forecast{
		Location: fr.Location.Name,
		Country:  fr.Location.Country,
		Days:     make([]domain.ForecastDay, 0, len(fr.Forecast.ForecastDay)),
	}
	for _, fd := range fr.Forecast.ForecastDay {
		date, err := time.Parse(time.DateOnly, fd.Date)
		if err != nil {
			return domain.Forecast{}, fmt.Errorf("%w: bad forecast date %q", domain.ErrUpstream, fd.Date)
		}
		icon := fd.Day.Condition.Icon
		if strings.HasPrefix(icon, "//") {
			icon = "https:" + icon
		}
		out.Days = append(out.Days, domain.ForecastDay{
			Date:         date,
			MaxTempC:     fd.Day.MaxTempC,
			MinTempC:     fd.Day.MinTempC,
			AvgTempC:     fd.Day.AvgTempC,
			ChanceOfRain: fd.Day.DailyChanceOfRain,
			Condition:    fd.Day.Condition.Text,
			IconURL:      icon,
		})
	}
	return out, nil
}
