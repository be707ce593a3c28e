package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Venue struct {
	bun.BaseModel `bun:"table:venues,alias:v"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	Name               string    `bun:"name,notnull" json:"name"`
	City               string    `bun:"city" json:"city"`
	State              string    `bun:"state" json:"state"`
	Address            string    `bun:"address" json:"address"`
	Phone              string    `bun:"phone" json:"phone"`
	ImageLink          string    `bun:"image_link" json:"image_link"`
	FacebookLink       string    `bun:"facebook_link" json:"facebook_link"`
	Website            string    `bun:"website" json:"website"`
	Genres             Genres    `bun:"genres,type:varchar(500)" json:"genres"`
	SeekingTalent      bool      `bun:"seeking_talent,notnull" json:"seeking_talent"`
	SeekingDescription string    `bun:"seeking_description" json:"seeking_description"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Shows []*Show `bun:"rel:has-many,join:id=venue_id" json:"-"`
}

func (v *Venue) CityState() string {
	return CityState(v.City, v.State)
}

type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:a"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	Name               string    `bun:"name,notnull" json:"name"`
	City               string    `bun:"city" json:"city"`
	State              string    `bun:"state" json:"state"`
	Phone              string    `bun:"phone" json:"phone"`
	ImageLink          string    `bun:"image_link" json:"image_link"`
	FacebookLink       string    `bun:"facebook_link" json:"facebook_link"`
	Website            string    `bun:"website" json:"website"`
	Genres             Genres    `bun:"genres,type:varchar(500)" json:"genres"`
	SeekingVenue       bool      `bun:"seeking_venue,notnull" json:"seeking_venue"`
	SeekingDescription string    `bun:"seeking_description" json:"seeking_description"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Shows          []*Show               `bun:"rel:has-many,join:id=artist_id" json:"-"`
	Availabilities []*ArtistAvailability `bun:"rel:has-many,join:id=artist_id" json:"availabilities,omitempty"`
}

func (a *Artist) CityState() string {
	return CityState(a.City, a.State)
}

// ArtistAvailability is a weekly window in which the artist accepts bookings.
type ArtistAvailability struct {
	bun.BaseModel `bun:"table:artist_availabilities,alias:aa"`

	ID       int64     `bun:"id,pk,autoincrement" json:"id"`
	ArtistID int64     `bun:"artist_id,notnull" json:"artist_id"`
	Day      Weekday   `bun:"day,notnull" json:"day"`
	TimeFrom TimeOfDay `bun:"time_from,type:time,notnull" json:"time_from"`
	TimeTo   TimeOfDay `bun:"time_to,type:time,notnull" json:"time_to"`
}

func (a *ArtistAvailability) DayName() string {
	return a.Day.String()
}

// Covers reports whether a show on day at t falls inside the window, bounds included.
// Inverted windows (TimeFrom after TimeTo) never match.
func (a *ArtistAvailability) Covers(day Weekday, t TimeOfDay) bool {
	if a.Day != day || a.TimeFrom > a.TimeTo {
		return false
	}
	return a.TimeFrom <= t && t <= a.TimeTo
}

type Show struct {
	bun.BaseModel `bun:"table:shows,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	VenueID   int64     `bun:"venue_id,notnull" json:"venue_id"`
	ArtistID  int64     `bun:"artist_id,notnull" json:"artist_id"`
	StartTime time.Time `bun:"start_time,notnull" json:"start_time"`

	Venue  *Venue  `bun:"rel:belongs-to,join:venue_id=id" json:"-"`
	Artist *Artist `bun:"rel:belongs-to,join:artist_id=id" json:"-"`
}

// CityState is the location label used for display and for search: "city, state",
// or just the state when the city is unknown.
func CityState(city, state string) string {
	if city == "" {
		return state
	}
	return city + ", " + state
}

// PartitionShows splits shows into past and upcoming relative to now, keeping order.
func PartitionShows(shows []*Show, now time.Time) (past, upcoming []*Show) {
	past, upcoming = []*Show{}, []*Show{}
	for _, s := range shows {
		if s.StartTime.After(now) {
			upcoming = append(upcoming, s)
		} else {
			past = append(past, s)
		}
	}
	return past, upcoming
}

func CountUpcoming(shows []*Show, now time.Time) int {
	n := 0
	for _, s := range shows {
		if s.StartTime.After(now) {
			n++
		}
	}
	return n
}
