package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// LatLng is a coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Viewport is a bounding box.
type Viewport struct {
	Northeast LatLng `json:"northeast"`
	Southwest LatLng `json:"southwest"`
}

// City is the JSON form of domain.CityDetails.
type City struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	FormattedAddress string    `json:"formatted_address"`
	Location         LatLng    `json:"location"`
	Viewport         *Viewport `json:"viewport,omitempty"`
	PhotoReferences  []string  `json:"photo_references"`
}

// Place is one search result.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Location         *LatLng  `json:"location,omitempty"`
	Rating           float64  `json:"rating"`
	ReviewCount      int      `json:"review_count"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Types            []string `json:"types"`
	PhotoReferences  []string `json:"photo_references"`
}

// PlaceDetails is the full record of a place.
type PlaceDetails struct {
	Place
	PhoneNumber      string        `json:"phone_number"`
	Website          string        `json:"website"`
	EditorialSummary string        `json:"editorial_summary"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty"`
	Reviews          []Review      `json:"reviews"`
	PhotoURLs        []string      `json:"photo_urls"`
}

// OpeningHours of a place. Periods without a close time are open around the clock.
type OpeningHours struct {
	OpenNow     *bool           `json:"open_now,omitempty"`
	WeekdayText []string        `json:"weekday_text"`
	Periods     []OpeningPeriod `json:"periods"`
}

// OpeningPeriod is one open/close pair.
type OpeningPeriod struct {
	Open  DayTime  `json:"open"`
	Close *DayTime `json:"close,omitempty"`
}

// DayTime is a weekday (0 = Sunday) and an "HHMM" time.
type DayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// Review is one user review.
type Review struct {
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	Time       time.Time `json:"time"`
}

// PhotoURL is the response of GET /places/photo.
type PhotoURL struct {
	URL string `json:"url"`
}

// GetCity handles GET /places/cities/{placeID}.
func (s *Server) GetCity(w http.ResponseWriter, r *http.Request) {
	if s.Places == nil {
		unavailable(w)
		return
	}
	city, err := s.Places.CityDetails(r.Context(), chi.URLParam(r, "placeID"))
	if err != nil {
		s.writeError(w, r, err, "city")
		return
	}
	writeJSON(w, http.StatusOK, cityToResponse(city))
}

// SearchPlaces handles GET /places/search?city_place_id=&category=[&city_name=][&max=].
func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	if s.Places == nil {
		unavailable(w)
		return
	}
	maxResults, ok := queryInt(w, r, "max")
	if !ok {
		return
	}
	limit := 0
	if maxResults != nil {
		limit = *maxResults
	}
	q := r.URL.Query()

	places, err := s.Places.SearchByCategory(r.Context(), q.Get("city_place_id"), q.Get("city_name"), q.Get("category"), limit)
	if err != nil {
		s.writeError(w, r, err, "city")
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(places))
}

// SearchPlacesText handles GET /places/text?q=[&city_place_id=].
func (s *Server) SearchPlacesText(w http.ResponseWriter, r *http.Request) {
	if s.Places == nil {
		unavailable(w)
		return
	}
	q := r.URL.Query()
	places, err := s.Places.SearchText(r.Context(), q.Get("q"), q.Get("city_place_id"))
	if err != nil {
		s.writeError(w, r, err, "city")
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(places))
}

// GetPlace handles GET /places/{placeID}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	if s.Places == nil {
		unavailable(w)
		return
	}
	details, err := s.Places.PlaceDetails(r.Context(), chi.URLParam(r, "placeID"))
	if err != nil {
		s.writeError(w, r, err, "place")
		return
	}
	writeJSON(w, http.StatusOK, detailsToResponse(details))
}

// GetPhotoURL handles GET /places/photo?ref=[&max_width=].
func (s *Server) GetPhotoURL(w http.ResponseWriter, r *http.Request) {
	if s.Places == nil {
		unavailable(w)
		return
	}
	width, ok := queryInt(w, r, "max_width")
	if !ok {
		return
	}
	maxWidth := 0
	if width != nil {
		maxWidth = *width
	}

	url, err := s.Places.PhotoURL(r.URL.Query().Get("ref"), maxWidth)
	if err != nil {
		s.writeError(w, r, err, "photo")
		return
	}
	writeJSON(w, http.StatusOK, PhotoURL{URL: url})
}

// ListHotels handles GET /schedules/{id}/hotels.
func (s *Server) ListHotels(w http.ResponseWriter, r *http.Request) {
	if s.Places == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	hotels, err := s.Places.HotelsForSchedule(r.Context(), userID(r), scheduleID)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(hotels))
}

// --- mapping helpers --------------------------------------------------------

func cityToResponse(c domain.CityDetails) City {
	resp := City{
		PlaceID:          c.PlaceID,
		Name:             c.Name,
		FormattedAddress: c.FormattedAddress,
		Location:         LatLng(c.Location),
		PhotoReferences:  nonNil(c.PhotoReferences),
	}
	if c.Viewport != nil {
		resp.Viewport = &Viewport{
			Northeast: LatLng(c.Viewport.Northeast),
			Southwest: LatLng(c.Viewport.Southwest),
		}
	}
	return resp
}

func placeToResponse(p domain.Place) Place {
	resp := Place{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Rating:           p.Rating,
		ReviewCount:      p.ReviewCount,
		PriceLevel:       p.PriceLevel,
		Types:            nonNil(p.Types),
		PhotoReferences:  nonNil(p.PhotoReferences),
	}
	if p.Location != nil {
		loc := LatLng(*p.Location)
		resp.Location = &loc
	}
	return resp
}

func placesToResponse(in []domain.Place) []Place {
	out := make([]Place, len(in))
	for i, p := range in {
		out[i] = placeToResponse(p)
	}
	return out
}

func detailsToResponse(d domain.PlaceDetails) PlaceDetails {
	resp := PlaceDetails{
		Place:            placeToResponse(d.Place),
		PhoneNumber:      d.PhoneNumber,
		Website:          d.Website,
		EditorialSummary: d.EditorialSummary,
		Reviews:          make([]Review, len(d.Reviews)),
		PhotoURLs:        nonNil(d.PhotoURLs),
	}
	for i, rv := range d.Reviews {
		resp.Reviews[i] = Review(rv)
	}
	if h := d.OpeningHours; h != nil {
		oh := &OpeningHours{
			OpenNow:     h.OpenNow,
			WeekdayText: nonNil(h.WeekdayText),
			Periods:     make([]OpeningPeriod, len(h.Periods)),
		}
		for i, p := range h.Periods {
			oh.Periods[i] = OpeningPeriod{Open: DayTime(p.Open)}
			if p.Close != nil {
				c := DayTime(*p.Close)
				oh.Periods[i].Close = &c
			}
		}
		resp.OpeningHours = oh
	}
	return resp
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
