// Package places is a client for the Google Places web service.
// It normalizes upstream JSON into domain types and applies the quality and
// geographic filters used by the planner's category search.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// DefaultBaseURL is the production endpoint of the Places web service.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Config holds the client settings.
type Config struct {
	// APIKey is sent as the key query parameter on every call.
	APIKey string

	// BaseURL defaults to DefaultBaseURL. Tests point it at an httptest server.
	BaseURL string

	// Timeout bounds each outbound call. Defaults to 10s.
	Timeout time.Duration

	// QueryDelay is the minimum spacing between canned text queries of one
	// category search. Zero disables the spacing.
	QueryDelay time.Duration
}

// Client calls the Places API. It is safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	delay   time.Duration
	logger  *slog.Logger
}

// New constructs a Client. A nil logger falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		delay:   cfg.QueryDelay,
		logger:  logger.With("component", "places"),
	}
}

// limiter returns a fresh limiter spacing requests by the configured delay.
// One limiter per category search keeps searches of different users apart.
func (c *Client) limiter() *rate.Limiter {
	if c.delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(c.delay), 1)
}

// get issues GET {base}/{path}?{params}&key=... and decodes the JSON body
// into dst. Any status other than OK or ZERO_RESULTS is an error.
func (c *Client) get(ctx context.Context, path string, params url.Values, dst apiResponse) error {
	params.Set("key", c.apiKey)
	u := c.baseURL + "/" + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("places: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("places: call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("places: read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places: %s returned HTTP %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("places: decode %s response: %w", path, err)
	}
	switch status, msg := dst.apiStatus(); status {
	case "", "OK", "ZERO_RESULTS":
		return nil
	default:
		return fmt.Errorf("places: %s status %s: %s", path, status, msg)
	}
}

// ---- wire types ------------------------------------------------------------

// apiResponse is implemented by every decoded envelope. The API reports
// most failures in the status field of a 200 response.
type apiResponse interface {
	apiStatus() (status, message string)
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l latLng) domain() domain.LatLng { return domain.LatLng{Lat: l.Lat, Lng: l.Lng} }

type geometry struct {
	Location *latLng `json:"location"`
	Viewport *struct {
		Northeast latLng `json:"northeast"`
		Southwest latLng `json:"southwest"`
	} `json:"viewport"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
}

type dayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

type openingHours struct {
	OpenNow     *bool    `json:"open_now"`
	WeekdayText []string `json:"weekday_text"`
	Periods     []struct {
		Open  dayTime  `json:"open"`
		Close *dayTime `json:"close"`
	} `json:"periods"`
}

type review struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
}

type placeResult struct {
	PlaceID              string        `json:"place_id"`
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address"`
	Vicinity             string        `json:"vicinity"`
	Geometry             *geometry     `json:"geometry"`
	Rating               float64       `json:"rating"`
	UserRatingsTotal     int           `json:"user_ratings_total"`
	PriceLevel           *int          `json:"price_level"`
	Types                []string      `json:"types"`
	Photos               []photo       `json:"photos"`
	FormattedPhoneNumber string        `json:"formatted_phone_number"`
	Website              string        `json:"website"`
	OpeningHours         *openingHours `json:"opening_hours"`
	Reviews              []review      `json:"reviews"`
	EditorialSummary     *struct {
		Overview string `json:"overview"`
	} `json:"editorial_summary"`
}

type searchResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

func (r *searchResponse) apiStatus() (string, string) { return r.Status, r.ErrorMessage }

type detailsResponse struct {
	Result       *placeResult `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

func (r *detailsResponse) apiStatus() (string, string) { return r.Status, r.ErrorMessage }

// toPlace maps a search or details result. Results without a formatted
// address fall back to the nearby-search vicinity.
func toPlace(r placeResult) domain.Place {
	p := domain.Place{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Rating:           r.Rating,
		ReviewCount:      r.UserRatingsTotal,
		PriceLevel:       r.PriceLevel,
		Types:            r.Types,
		PhotoReferences:  photoRefs(r.Photos),
	}
	if p.FormattedAddress == "" {
		p.FormattedAddress = r.Vicinity
	}
	if p.Types == nil {
		p.Types = []string{}
	}
	if r.Geometry != nil && r.Geometry.Location != nil {
		loc := r.Geometry.Location.domain()
		p.Location = &loc
	}
	return p
}

func photoRefs(photos []photo) []string {
	refs := make([]string, 0, len(photos))
	for _, ph := range photos {
		if ph.PhotoReference != "" {
			refs = append(refs, ph.PhotoReference)
		}
	}
	return refs
}
