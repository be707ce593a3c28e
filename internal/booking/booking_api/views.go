package booking_api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ms-fyyur/internal/booking"
	"ms-fyyur/internal/models"
)

//go:embed templates
var templateFS embed.FS

const layoutFile = "templates/layout.html"

type views struct {
	pages map[string]*template.Template
}

type pageData struct {
	Title   string
	Flashes []string
	Data    any
}

type dayOption struct {
	Value string
	Name  string
}

func weekdayOptions() []dayOption {
	out := make([]dayOption, 0, 7)
	for d := models.Weekday(1); d <= 7; d++ {
		out = append(out, dayOption{Value: strconv.Itoa(int(d)), Name: d.String()})
	}
	return out
}

// newViews parses every page under templates/ together with the shared layout.
func newViews(loc *time.Location) (*views, error) {
	funcs := template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.In(loc).Format("Mon Jan 2, 2006 3:04PM")
		},
		"cityState": models.CityState,
		"join":      strings.Join,
		"selected": func(values []string, g models.Genre) bool {
			for _, v := range values {
				if v == string(g) {
					return true
				}
			}
			return false
		},
	}

	paths, err := fs.Glob(templateFS, "templates/*/*.html")
	if err != nil {
		return nil, err
	}

	v := &views{pages: make(map[string]*template.Template, len(paths))}
	for _, path := range paths {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, layoutFile, path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		v.pages[strings.TrimPrefix(path, "templates/")] = t
	}
	return v, nil
}

// render executes into a buffer first so a template error never leaves a half-written page.
func (v *views) render(w http.ResponseWriter, status int, name string, data pageData) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

type homePage struct {
	Venues  []*models.Venue
	Artists []*models.Artist
}

type searchPage struct {
	Kind    string
	Term    string
	Results booking.SearchResult
}

type venueForm struct {
	Action  string
	Editing bool
	Input   booking.VenueInput
	Errors  map[string]string
	States  []string
	Genres  []models.Genre
}

type artistForm struct {
	Action  string
	Editing bool
	Input   booking.ArtistInput
	Rows    []booking.AvailabilityInput
	Errors  map[string]string
	States  []string
	Genres  []models.Genre
	Days    []dayOption
}

type showForm struct {
	Input  showFields
	Errors map[string]string
	Layout string
}

func newVenueForm(action string, editing bool, in booking.VenueInput, errs map[string]string) venueForm {
	return venueForm{
		Action:  action,
		Editing: editing,
		Input:   in,
		Errors:  errs,
		States:  booking.States,
		Genres:  models.AllGenres,
	}
}

// newArtistForm always offers one blank availability row after the submitted ones.
func newArtistForm(action string, editing bool, in booking.ArtistInput, errs map[string]string) artistForm {
	rows := append([]booking.AvailabilityInput{}, in.Availabilities...)
	rows = append(rows, booking.AvailabilityInput{})
	return artistForm{
		Action:  action,
		Editing: editing,
		Input:   in,
		Rows:    rows,
		Errors:  errs,
		States:  booking.States,
		Genres:  models.AllGenres,
		Days:    weekdayOptions(),
	}
}
