package booking_api

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"ms-fyyur/internal/booking"
)

// StartTimeLayout is the format of the show form's start_time field.
const StartTimeLayout = "2006-01-02 15:04:05"

var startTimeLayouts = []string{
	StartTimeLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var availabilityKey = regexp.MustCompile(`^availabilities-(\d+)-(id|day|time_from|time_to)$`)

func field(f url.Values, name string) string {
	return strings.TrimSpace(f.Get(name))
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}

func venueInputFromForm(f url.Values) booking.VenueInput {
	return booking.VenueInput{
		Name:               field(f, "name"),
		City:               field(f, "city"),
		State:              field(f, "state"),
		Address:            field(f, "address"),
		Phone:              field(f, "phone"),
		ImageLink:          field(f, "image_link"),
		FacebookLink:       field(f, "facebook_link"),
		Website:            field(f, "website_link"),
		Genres:             f["genres"],
		SeekingTalent:      checked(f.Get("seeking_talent")),
		SeekingDescription: field(f, "seeking_description"),
	}
}

func artistInputFromForm(f url.Values) booking.ArtistInput {
	return booking.ArtistInput{
		Name:               field(f, "name"),
		City:               field(f, "city"),
		State:              field(f, "state"),
		Phone:              field(f, "phone"),
		ImageLink:          field(f, "image_link"),
		FacebookLink:       field(f, "facebook_link"),
		Website:            field(f, "website_link"),
		Genres:             f["genres"],
		SeekingVenue:       checked(f.Get("seeking_venue")),
		SeekingDescription: field(f, "seeking_description"),
		Availabilities:     availabilityRows(f),
	}
}

// availabilityRows collects the availabilities-N-* fields in row order.
func availabilityRows(f url.Values) []booking.AvailabilityInput {
	rows := map[int]*booking.AvailabilityInput{}
	for key, vals := range f {
		m := availabilityKey.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		i, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		row, ok := rows[i]
		if !ok {
			row = &booking.AvailabilityInput{}
			rows[i] = row
		}
		v := strings.TrimSpace(vals[0])
		switch m[2] {
		case "id":
			row.ID, _ = strconv.ParseInt(v, 10, 64)
		case "day":
			row.Day = v
		case "time_from":
			row.TimeFrom = v
		case "time_to":
			row.TimeTo = v
		}
	}

	idx := make([]int, 0, len(rows))
	for i := range rows {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]booking.AvailabilityInput, 0, len(idx))
	for _, i := range idx {
		out = append(out, *rows[i])
	}
	return out
}

// showFields is the raw show form, kept for re-rendering.
type showFields struct {
	ArtistID  string
	VenueID   string
	StartTime string
}

func showFieldsFromForm(f url.Values) showFields {
	return showFields{
		ArtistID:  field(f, "artist_id"),
		VenueID:   field(f, "venue_id"),
		StartTime: field(f, "start_time"),
	}
}

// input converts the raw fields. Unparseable values are left zero and fail validation.
func (s showFields) input(loc *time.Location) booking.ShowInput {
	in := booking.ShowInput{}
	in.ArtistID, _ = strconv.ParseInt(s.ArtistID, 10, 64)
	in.VenueID, _ = strconv.ParseInt(s.VenueID, 10, 64)
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, s.StartTime, loc); err == nil {
			in.StartTime = t
			break
		}
	}
	return in
}
