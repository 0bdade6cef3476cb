package places

import (
	"context"
	"math"
	"net/url"
	"sort"
	"strconv"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// Search tuning.
const (
	kmPerDegree = 111.0

	// DefaultRadius is used when the city has no viewport.
	DefaultRadius = 15000
	MinRadius     = 5000
	MaxRadius     = 30000

	radiusScale = 0.7

	minRating  = 3.0
	minReviews = 5
)

// queryTemplates holds the canned text queries per category. Each template
// is followed by a space and the city name.
var queryTemplates = map[string][]string{
	"restaurant":    {"restaurants in", "best restaurants", "dining"},
	"lodging":       {"hotels in", "accommodation", "lodging"},
	"park":          {"parks in", "gardens", "recreation"},
	"museum":        {"museums in", "galleries", "culture"},
	"shopping_mall": {"shopping in", "malls", "stores"},
}

// categoryTags lists the upstream types accepted for each category.
var categoryTags = map[string][]string{
	"restaurant":    {"restaurant", "meal_takeaway", "meal_delivery", "food", "cafe", "bar"},
	"lodging":       {"lodging", "hotel", "resort", "hostel", "motel", "bed_and_breakfast", "guest_house"},
	"park":          {"park", "natural_feature", "campground", "rv_park"},
	"museum":        {"museum", "art_gallery", "library", "cultural_center"},
	"shopping_mall": {"shopping_mall", "department_store", "store", "clothing_store", "electronics_store"},
}

// SearchQueries returns the text queries issued for a category in a city.
func SearchQueries(category, cityName string) []string {
	templates, ok := queryTemplates[category]
	if !ok {
		return []string{category + " in " + cityName}
	}
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = t + " " + cityName
	}
	return out
}

// SearchRadius derives a search radius in meters from a city viewport: the
// diagonal of the box in km, scaled by 0.7, clamped to [MinRadius, MaxRadius].
func SearchRadius(v *domain.Viewport) int {
	if v == nil {
		return DefaultRadius
	}
	midLat := (v.Northeast.Lat + v.Southwest.Lat) / 2
	latKm := math.Abs(v.Northeast.Lat-v.Southwest.Lat) * kmPerDegree
	lngKm := math.Abs(v.Northeast.Lng-v.Southwest.Lng) * kmPerDegree * math.Cos(midLat*math.Pi/180)
	meters := math.Hypot(latKm, lngKm) * radiusScale * 1000

	switch {
	case meters < MinRadius:
		return MinRadius
	case meters > MaxRadius:
		return MaxRadius
	default:
		return int(meters)
	}
}

// SearchByCategory finds the best places of a category around a city.
//
// One nearby query and the category's canned text queries are issued in
// sequence; a failing sub-query contributes nothing. The merged results are
// deduplicated by place id, restricted to the city viewport and the
// category's tags, quality filtered, ranked and truncated to maxResults.
// An unresolvable city yields an empty slice.
func (c *Client) SearchByCategory(ctx context.Context, cityPlaceID, cityName, category string, maxResults int) []domain.Place {
	city, err := c.CityDetails(ctx, cityPlaceID)
	if err != nil {
		return []domain.Place{}
	}
	if cityName == "" {
		cityName = city.Name
	}

	location := formatLatLng(city.Location)
	radius := strconv.Itoa(SearchRadius(city.Viewport))

	var merged []domain.Place
	merged = append(merged, c.search(ctx, "nearbysearch/json", url.Values{
		"location": {location},
		"radius":   {radius},
		"type":     {category},
	})...)

	limiter := c.limiter()
	for _, q := range SearchQueries(category, cityName) {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		merged = append(merged, c.search(ctx, "textsearch/json", url.Values{
			"query":    {q},
			"location": {location},
			"radius":   {radius},
		})...)
	}

	merged = dedupe(merged)
	filtered := merged[:0]
	for _, p := range merged {
		if inViewport(city.Viewport, p) && matchesCategory(category, p.Types) && meetsQuality(p) {
			filtered = append(filtered, p)
		}
	}
	return rank(filtered, maxResults)
}

// SearchText runs a free-text search, biased to the city when cityPlaceID
// resolves. Results are quality filtered and ranked. Upstream failure yields
// an empty slice.
func (c *Client) SearchText(ctx context.Context, query, cityPlaceID string, maxResults int) []domain.Place {
	params := url.Values{"query": {query}}
	if cityPlaceID != "" {
		if city, err := c.CityDetails(ctx, cityPlaceID); err == nil {
			params.Set("location", formatLatLng(city.Location))
			params.Set("radius", strconv.Itoa(DefaultRadius))
		}
	}

	results := c.search(ctx, "textsearch/json", params)
	filtered := results[:0]
	for _, p := range results {
		if meetsQuality(p) {
			filtered = append(filtered, p)
		}
	}
	return rank(filtered, maxResults)
}

// search runs one sub-query. Failures are logged and yield no results.
func (c *Client) search(ctx context.Context, path string, params url.Values) []domain.Place {
	var resp searchResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		c.logger.WarnContext(ctx, "places sub-query failed", "path", path, "error", err)
		return nil
	}
	out := make([]domain.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, toPlace(r))
	}
	return out
}

// dedupe keeps the first occurrence of each place id.
func dedupe(in []domain.Place) []domain.Place {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Place, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p.PlaceID]; ok {
			continue
		}
		seen[p.PlaceID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// inViewport is lenient: without a viewport or a result coordinate the
// result is kept.
func inViewport(v *domain.Viewport, p domain.Place) bool {
	if v == nil || p.Location == nil {
		return true
	}
	return v.Contains(*p.Location)
}

// matchesCategory reports whether types intersect the category's tags.
// Unmapped categories accept any result that carries at least one type.
func matchesCategory(category string, types []string) bool {
	tags, ok := categoryTags[category]
	if !ok {
		return len(types) > 0
	}
	for _, t := range types {
		for _, tag := range tags {
			if t == tag {
				return true
			}
		}
	}
	return false
}

func meetsQuality(p domain.Place) bool {
	return p.Rating >= minRating && p.ReviewCount >= minReviews
}

// rank sorts by review count, then rating, both descending, and truncates.
// Always returns a non-nil slice.
func rank(in []domain.Place, maxResults int) []domain.Place {
	out := make([]domain.Place, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ReviewCount != out[j].ReviewCount {
			return out[i].ReviewCount > out[j].ReviewCount
		}
		return out[i].Rating > out[j].Rating
	})
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func formatLatLng(l domain.LatLng) string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}
