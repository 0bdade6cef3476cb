package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// Forecast is the JSON form of domain.Forecast.
type Forecast struct {
	Location string        `json:"location"`
	Country  string        `json:"country"`
	Days     []ForecastDay `json:"days"`
}

// ForecastDay is one day of a forecast.
type ForecastDay struct {
	Date         openapi_types.Date `json:"date"`
	MaxTempC     float64            `json:"max_temp_c"`
	MinTempC     float64            `json:"min_temp_c"`
	AvgTempC     float64            `json:"avg_temp_c"`
	ChanceOfRain int                `json:"chance_of_rain"`
	Condition    string             `json:"condition"`
	IconURL      string             `json:"icon_url"`
}

// GetForecast handles GET /schedules/{id}/forecast[?days=].
// days is clamped to [1, 14]; the default is 3.
func (s *Server) GetForecast(w http.ResponseWriter, r *http.Request) {
	if s.Forecast == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	daysParam, ok := queryInt(w, r, "days")
	if !ok {
		return
	}
	days := defaultForecastDays
	if daysParam != nil {
		days = *daysParam
	}

	fc, err := s.Forecast.Forecast(r.Context(), userID(r), scheduleID, days)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, forecastToResponse(fc))
}

const defaultForecastDays = 3

func forecastToResponse(fc domain.Forecast) Forecast {
	resp := Forecast{
		Location: fc.Location,
		Country:  fc.Country,
		Days:     make([]ForecastDay, len(fc.Days)),
	}
	for i, d := range fc.Days {
		resp.Days[i] = ForecastDay{
			Date:         openapi_types.Date{Time: d.Date},
			MaxTempC:     d.MaxTempC,
			MinTempC:     d.MinTempC,
			AvgTempC:     d.AvgTempC,
			ChanceOfRain: d.ChanceOfRain,
			Condition:    d.Condition,
			IconURL:      d.IconURL,
		}
	}
	return resp
}
