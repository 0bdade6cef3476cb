package domain

import "time"

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Viewport is a bounding box given by its northeast and southwest corners.
type Viewport struct {
	Northeast LatLng
	Southwest LatLng
}

// Contains reports whether p lies inside the box, edges included.
func (v Viewport) Contains(p LatLng) bool {
	return p.Lat >= v.Southwest.Lat && p.Lat <= v.Northeast.Lat &&
		p.Lng >= v.Southwest.Lng && p.Lng <= v.Northeast.Lng
}

// CityDetails is the resolved destination of a schedule.
type CityDetails struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Location         LatLng
	Viewport         *Viewport
	PhotoReferences  []string
}

// Place is one search result, normalized from the upstream API.
type Place struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Location         *LatLng
	Rating           float64
	ReviewCount      int
	PriceLevel       *int
	Types            []string
	PhotoReferences  []string
}

// PlaceDetails is the full record of a single place.
type PlaceDetails struct {
	Place
	PhoneNumber      string
	Website          string
	EditorialSummary string
	OpeningHours     *OpeningHours
	Reviews          []Review
	PhotoURLs        []string
}

// OpeningHours holds both the display text and the raw periods.
type OpeningHours struct {
	OpenNow     *bool
	WeekdayText []string
	Periods     []OpeningPeriod
}

// OpeningPeriod is one open/close pair. Close is nil for places open 24/7.
type OpeningPeriod struct {
	Open  DayTime
	Close *DayTime
}

// DayTime is a weekday (0 = Sunday) and a "HHMM" time.
type DayTime struct {
	Day  int
	Time string
}

// Review is a single user review of a place.
type Review struct {
	AuthorName string
	Rating     int
	Text       string
	Time       time.Time
}
