package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pkordes/travel-agenda/internal/domain"
)

const (
	cityFields  = "name,geometry,formatted_address,photos"
	placeFields = "name,rating,user_ratings_total,formatted_address,formatted_phone_number," +
		"website,opening_hours,reviews,editorial_summary,types,photos,geometry,price_level"

	maxReviews        = 5
	detailsPhotoWidth = 400
)

// CityDetails resolves a city by place id. Any upstream failure, and a
// response without a result, is reported as domain.ErrNotFound.
func (c *Client) CityDetails(ctx context.Context, placeID string) (domain.CityDetails, error) {
	var resp detailsResponse
	params := url.Values{"place_id": {placeID}, "fields": {cityFields}}
	if err := c.get(ctx, "details/json", params, &resp); err != nil {
		c.logger.WarnContext(ctx, "city details lookup failed", "place_id", placeID, "error", err)
		return domain.CityDetails{}, fmt.Errorf("places.Client.CityDetails: %w", domain.ErrNotFound)
	}
	if resp.Result == nil || resp.Result.Geometry == nil || resp.Result.Geometry.Location == nil {
		return domain.CityDetails{}, fmt.Errorf("places.Client.CityDetails: %w", domain.ErrNotFound)
	}

	r := resp.Result
	city := domain.CityDetails{
		PlaceID:          placeID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Location:         r.Geometry.Location.domain(),
		PhotoReferences:  photoRefs(r.Photos),
	}
	if vp := r.Geometry.Viewport; vp != nil {
		city.Viewport = &domain.Viewport{
			Northeast: vp.Northeast.domain(),
			Southwest: vp.Southwest.domain(),
		}
	}
	return city, nil
}

// PlaceDetails returns the full record of a place, or domain.ErrNotFound when
// the upstream call fails or has no result.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	var resp detailsResponse
	params := url.Values{"place_id": {placeID}, "fields": {placeFields}}
	if err := c.get(ctx, "details/json", params, &resp); err != nil {
		c.logger.WarnContext(ctx, "place details lookup failed", "place_id", placeID, "error", err)
		return domain.PlaceDetails{}, fmt.Errorf("places.Client.PlaceDetails: %w", domain.ErrNotFound)
	}
	if resp.Result == nil {
		return domain.PlaceDetails{}, fmt.Errorf("places.Client.PlaceDetails: %w", domain.ErrNotFound)
	}

	r := *resp.Result
	r.PlaceID = placeID
	details := domain.PlaceDetails{
		Place:       toPlace(r),
		PhoneNumber: r.FormattedPhoneNumber,
		Website:     r.Website,
		Reviews:     make([]domain.Review, 0, len(r.Reviews)),
	}
	if r.EditorialSummary != nil {
		details.EditorialSummary = r.EditorialSummary.Overview
	}
	if oh := r.OpeningHours; oh != nil {
		details.OpeningHours = &domain.OpeningHours{OpenNow: oh.OpenNow, WeekdayText: oh.WeekdayText}
		for _, p := range oh.Periods {
			period := domain.OpeningPeriod{Open: domain.DayTime{Day: p.Open.Day, Time: p.Open.Time}}
			if p.Close != nil {
				period.Close = &domain.DayTime{Day: p.Close.Day, Time: p.Close.Time}
			}
			details.OpeningHours.Periods = append(details.OpeningHours.Periods, period)
		}
	}
	for i, rv := range r.Reviews {
		if i == maxReviews {
			break
		}
		details.Reviews = append(details.Reviews, domain.Review{
			AuthorName: rv.AuthorName,
			Rating:     rv.Rating,
			Text:       rv.Text,
			Time:       time.Unix(rv.Time, 0).UTC(),
		})
	}
	details.PhotoURLs = make([]string, 0, len(details.PhotoReferences))
	for _, ref := range details.PhotoReferences {
		details.PhotoURLs = append(details.PhotoURLs, c.PhotoURL(ref, detailsPhotoWidth))
	}
	return details, nil
}

// PhotoURL builds the photo endpoint URL for a reference. It makes no call.
// An empty reference yields an empty string.
func (c *Client) PhotoURL(photoReference string, maxWidth int) string {
	if photoReference == "" {
		return ""
	}
	params := url.Values{
		"maxwidth":        {strconv.Itoa(maxWidth)},
		"photo_reference": {photoReference},
		"key":             {c.apiKey},
	}
	return c.baseURL + "/photo?" + params.Encode()
}
