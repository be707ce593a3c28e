package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ms-fyyur/internal/models"

	"github.com/go-playground/validator/v10"
)

// States lists the two-letter codes offered by the state select.
var States = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL",
	"GA", "HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME",
	"MT", "NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH",
	"OK", "OR", "MD", "MA", "MI", "MN", "MS", "MO", "PA", "RI",
	"SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

type VenueInput struct {
	Name               string   `validate:"required,max=120"`
	City               string   `validate:"required,max=120"`
	State              string   `validate:"required,usstate"`
	Address            string   `validate:"required,max=120"`
	Phone              string   `validate:"max=120"`
	ImageLink          string   `validate:"omitempty,url,max=500"`
	FacebookLink       string   `validate:"omitempty,url,max=120"`
	Website            string   `validate:"omitempty,url,max=120"`
	Genres             []string `validate:"min=1,dive,genre"`
	SeekingTalent      bool
	SeekingDescription string `validate:"max=500"`
}

type ArtistInput struct {
	Name               string   `validate:"required,max=120"`
	City               string   `validate:"required,max=120"`
	State              string   `validate:"required,usstate"`
	Phone              string   `validate:"max=120"`
	ImageLink          string   `validate:"omitempty,url,max=500"`
	FacebookLink       string   `validate:"omitempty,url,max=120"`
	Website            string   `validate:"omitempty,url,max=120"`
	Genres             []string `validate:"min=1,dive,genre"`
	SeekingVenue       bool
	SeekingDescription string `validate:"max=500"`
	Availabilities     []AvailabilityInput `validate:"-"`
}

// AvailabilityInput is one submitted availability row. ID is zero for new rows.
type AvailabilityInput struct {
	ID       int64
	Day      string
	TimeFrom string
	TimeTo   string
}

// Complete reports whether every field of the window was filled in.
func (a AvailabilityInput) Complete() bool {
	return strings.TrimSpace(a.Day) != "" && strings.TrimSpace(a.TimeFrom) != "" && strings.TrimSpace(a.TimeTo) != ""
}

type ShowInput struct {
	ArtistID  int64     `validate:"required,gt=0"`
	VenueID   int64     `validate:"required,gt=0"`
	StartTime time.Time `validate:"required"`
}

// AvailabilityChanges is what an artist edit does to the stored windows.
type AvailabilityChanges struct {
	Update []*models.ArtistAvailability
	Insert []*models.ArtistAvailability
	Delete []int64
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("usstate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, st := range States {
			if s == st {
				return true
			}
		}
		return false
	})
	v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return models.Genre(fl.Field().String()).Valid()
	})
	return v
}

var fieldNames = map[string]string{
	"Name":               "name",
	"City":               "city",
	"State":              "state",
	"Address":            "address",
	"Phone":              "phone",
	"ImageLink":          "image_link",
	"FacebookLink":       "facebook_link",
	"Website":            "website_link",
	"Genres":             "genres",
	"SeekingDescription": "seeking_description",
	"ArtistID":           "artist_id",
	"VenueID":            "venue_id",
	"StartTime":          "start_time",
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return "Select at least one."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "url":
		return "Must be a valid URL."
	case "usstate":
		return "Not a valid state."
	case "genre":
		return "Not a valid genre."
	case "gt":
		return "Not a valid choice."
	default:
		return "Invalid value."
	}
}

func validateStruct(s any) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(s)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("form", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		field := fe.StructField()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		name, ok := fieldNames[field]
		if !ok {
			name = strings.ToLower(field)
		}
		verr.add(name, validationMessage(fe))
	}
	return verr
}

// parseAvailabilities turns the complete submitted rows into windows. Incomplete rows
// are returned by id so an edit can delete them.
func parseAvailabilities(rows []AvailabilityInput, verr *ValidationError) (windows []*models.ArtistAvailability, incomplete []int64) {
	for i, row := range rows {
		if !row.Complete() {
			if row.ID != 0 {
				incomplete = append(incomplete, row.ID)
			}
			continue
		}

		field := fmt.Sprintf("availabilities-%d", i)
		day, err := strconv.Atoi(strings.TrimSpace(row.Day))
		if err != nil || !models.Weekday(day).Valid() {
			verr.add(field+"-day", "Not a valid day.")
			continue
		}
		from, err := models.ParseTimeOfDay(row.TimeFrom)
		if err != nil {
			verr.add(field+"-time_from", "Not a valid time.")
			continue
		}
		to, err := models.ParseTimeOfDay(row.TimeTo)
		if err != nil {
			verr.add(field+"-time_to", "Not a valid time.")
			continue
		}
		if from > to {
			verr.add(field+"-time_to", "Must not be earlier than the start time.")
			continue
		}

		windows = append(windows, &models.ArtistAvailability{
			ID:       row.ID,
			Day:      models.Weekday(day),
			TimeFrom: from,
			TimeTo:   to,
		})
	}
	return windows, incomplete
}

func (in VenueInput) toModel(v *models.Venue) {
	v.Name = strings.TrimSpace(in.Name)
	v.City = strings.TrimSpace(in.City)
	v.State = in.State
	v.Address = strings.TrimSpace(in.Address)
	v.Phone = strings.TrimSpace(in.Phone)
	v.ImageLink = in.ImageLink
	v.FacebookLink = in.FacebookLink
	v.Website = in.Website
	v.Genres, _ = models.ParseGenres(in.Genres)
	v.SeekingTalent = in.SeekingTalent
	v.SeekingDescription = in.SeekingDescription
}

func (in ArtistInput) toModel(a *models.Artist) {
	a.Name = strings.TrimSpace(in.Name)
	a.City = strings.TrimSpace(in.City)
	a.State = in.State
	a.Phone = strings.TrimSpace(in.Phone)
	a.ImageLink = in.ImageLink
	a.FacebookLink = in.FacebookLink
	a.Website = in.Website
	a.Genres, _ = models.ParseGenres(in.Genres)
	a.SeekingVenue = in.SeekingVenue
	a.SeekingDescription = in.SeekingDescription
}

// VenueInputFrom prefills the edit form from a stored venue.
func VenueInputFrom(v *models.Venue) VenueInput {
	return VenueInput{
		Name:               v.Name,
		City:               v.City,
		State:              v.State,
		Address:            v.Address,
		Phone:              v.Phone,
		ImageLink:          v.ImageLink,
		FacebookLink:       v.FacebookLink,
		Website:            v.Website,
		Genres:             v.Genres.Strings(),
		SeekingTalent:      v.SeekingTalent,
		SeekingDescription: v.SeekingDescription,
	}
}

// ArtistInputFrom prefills the edit form from a stored artist and its windows.
func ArtistInputFrom(a *models.Artist) ArtistInput {
	in := ArtistInput{
		Name:               a.Name,
		City:               a.City,
		State:              a.State,
		Phone:              a.Phone,
		ImageLink:          a.ImageLink,
		FacebookLink:       a.FacebookLink,
		Website:            a.Website,
		Genres:             a.Genres.Strings(),
		SeekingVenue:       a.SeekingVenue,
		SeekingDescription: a.SeekingDescription,
	}
	for _, w := range a.Availabilities {
		in.Availabilities = append(in.Availabilities, AvailabilityInput{
			ID:       w.ID,
			Day:      strconv.Itoa(int(w.Day)),
			TimeFrom: w.TimeFrom.HHMM(),
			TimeTo:   w.TimeTo.HHMM(),
		})
	}
	return in
}
