package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ms-fyyur/internal/logger"
	"ms-fyyur/internal/models"
)

const (
	RecentListingsLimit = 10

	// PublishTimeout bounds how long a committed write waits on the broker.
	PublishTimeout = 5 * time.Second

	TopicShowCreated   = "fyyur.show.created"
	TopicVenueDeleted  = "fyyur.venue.deleted"
	TopicArtistDeleted = "fyyur.artist.deleted"
)

// Topics lists every topic the booking service publishes to.
var Topics = []string{TopicShowCreated, TopicVenueDeleted, TopicArtistDeleted}

type DBLayer interface {
	RecentVenues(ctx context.Context, limit int) ([]*models.Venue, error)
	RecentArtists(ctx context.Context, limit int) ([]*models.Artist, error)
	ListVenues(ctx context.Context) ([]*models.Venue, error)
	ListArtists(ctx context.Context) ([]*models.Artist, error)
	SearchVenues(ctx context.Context, term string) ([]*models.Venue, error)
	SearchArtists(ctx context.Context, term string) ([]*models.Artist, error)
	GetVenue(ctx context.Context, id int64) (*models.Venue, error)
	GetArtist(ctx context.Context, id int64) (*models.Artist, error)
	CreateVenue(ctx context.Context, venue *models.Venue) error
	UpdateVenue(ctx context.Context, venue *models.Venue) error
	DeleteVenue(ctx context.Context, id int64) error
	CreateArtist(ctx context.Context, artist *models.Artist, windows []*models.ArtistAvailability) error
	UpdateArtist(ctx context.Context, artist *models.Artist, changes AvailabilityChanges) error
	DeleteArtist(ctx context.Context, id int64) error
	ListShows(ctx context.Context) ([]*models.Show, error)
	GetShow(ctx context.Context, id int64) (*models.Show, error)
	BookShow(ctx context.Context, show *models.Show, day models.Weekday, at models.TimeOfDay) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

type BookingService struct {
	DB       DBLayer
	Events   EventPublisher
	Location *time.Location
	Logger   *logger.Logger
	Now      func() time.Time
}

func NewBookingService(db DBLayer, events EventPublisher, loc *time.Location, log *logger.Logger) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		DB:       db,
		Events:   events,
		Location: loc,
		Logger:   log,
		Now:      time.Now,
	}
}

// Summary is the short listing entry used by area listings and search results.
type Summary struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	NumUpcomingShows int    `json:"num_upcoming_shows"`
}

type SearchResult struct {
	Count int       `json:"count"`
	Data  []Summary `json:"data"`
}

type Area struct {
	City   string
	State  string
	Venues []Summary
}

// ShowEntry is a show flattened with the names and images of both parties.
type ShowEntry struct {
	ID              int64     `json:"id"`
	VenueID         int64     `json:"venue_id"`
	VenueName       string    `json:"venue_name"`
	VenueImageLink  string    `json:"venue_image_link"`
	ArtistID        int64     `json:"artist_id"`
	ArtistName      string    `json:"artist_name"`
	ArtistImageLink string    `json:"artist_image_link"`
	StartTime       time.Time `json:"start_time"`
}

type VenueDetail struct {
	Venue         *models.Venue
	PastShows     []ShowEntry
	UpcomingShows []ShowEntry
}

type ArtistDetail struct {
	Artist        *models.Artist
	PastShows     []ShowEntry
	UpcomingShows []ShowEntry
}

func entries(shows []*models.Show) []ShowEntry {
	out := make([]ShowEntry, 0, len(shows))
	for _, s := range shows {
		e := ShowEntry{ID: s.ID, VenueID: s.VenueID, ArtistID: s.ArtistID, StartTime: s.StartTime}
		if s.Venue != nil {
			e.VenueName = s.Venue.Name
			e.VenueImageLink = s.Venue.ImageLink
		}
		if s.Artist != nil {
			e.ArtistName = s.Artist.Name
			e.ArtistImageLink = s.Artist.ImageLink
		}
		out = append(out, e)
	}
	return out
}

func (s *BookingService) Home(ctx context.Context) ([]*models.Venue, []*models.Artist, error) {
	venues, err := s.DB.RecentVenues(ctx, RecentListingsLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("recent venues: %w", err)
	}
	artists, err := s.DB.RecentArtists(ctx, RecentListingsLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("recent artists: %w", err)
	}
	return venues, artists, nil
}

// VenuesByArea groups all venues by city and state, in the order the store returns them.
func (s *BookingService) VenuesByArea(ctx context.Context) ([]Area, error) {
	venues, err := s.DB.ListVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}

	now := s.Now()
	var areas []Area
	index := map[string]int{}
	for _, v := range venues {
		key := v.City + "\x00" + v.State
		i, ok := index[key]
		if !ok {
			i = len(areas)
			index[key] = i
			areas = append(areas, Area{City: v.City, State: v.State})
		}
		areas[i].Venues = append(areas[i].Venues, Summary{
			ID:               v.ID,
			Name:             v.Name,
			NumUpcomingShows: models.CountUpcoming(v.Shows, now),
		})
	}
	return areas, nil
}

func (s *BookingService) Artists(ctx context.Context) ([]*models.Artist, error) {
	artists, err := s.DB.ListArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	return artists, nil
}

func (s *BookingService) SearchVenues(ctx context.Context, term string) (SearchResult, error) {
	venues, err := s.DB.SearchVenues(ctx, term)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search venues: %w", err)
	}
	now := s.Now()
	res := SearchResult{Data: make([]Summary, 0, len(venues))}
	for _, v := range venues {
		res.Data = append(res.Data, Summary{ID: v.ID, Name: v.Name, NumUpcomingShows: models.CountUpcoming(v.Shows, now)})
	}
	res.Count = len(res.Data)
	return res, nil
}

func (s *BookingService) SearchArtists(ctx context.Context, term string) (SearchResult, error) {
	artists, err := s.DB.SearchArtists(ctx, term)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search artists: %w", err)
	}
	now := s.Now()
	res := SearchResult{Data: make([]Summary, 0, len(artists))}
	for _, a := range artists {
		res.Data = append(res.Data, Summary{ID: a.ID, Name: a.Name, NumUpcomingShows: models.CountUpcoming(a.Shows, now)})
	}
	res.Count = len(res.Data)
	return res, nil
}

func (s *BookingService) Venue(ctx context.Context, id int64) (*models.Venue, error) {
	v, err := s.DB.GetVenue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("venue %d: %w", id, err)
	}
	return v, nil
}

func (s *BookingService) Artist(ctx context.Context, id int64) (*models.Artist, error) {
	a, err := s.DB.GetArtist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("artist %d: %w", id, err)
	}
	return a, nil
}

func (s *BookingService) VenueDetail(ctx context.Context, id int64) (*VenueDetail, error) {
	v, err := s.Venue(ctx, id)
	if err != nil {
		return nil, err
	}
	past, upcoming := models.PartitionShows(v.Shows, s.Now())
	return &VenueDetail{Venue: v, PastShows: entries(past), UpcomingShows: entries(upcoming)}, nil
}

func (s *BookingService) ArtistDetail(ctx context.Context, id int64) (*ArtistDetail, error) {
	a, err := s.Artist(ctx, id)
	if err != nil {
		return nil, err
	}
	past, upcoming := models.PartitionShows(a.Shows, s.Now())
	return &ArtistDetail{Artist: a, PastShows: entries(past), UpcomingShows: entries(upcoming)}, nil
}

func (s *BookingService) CreateVenue(ctx context.Context, in VenueInput) (*models.Venue, error) {
	if err := validateStruct(in).orNil(); err != nil {
		return nil, err
	}
	v := &models.Venue{}
	in.toModel(v)
	if err := s.DB.CreateVenue(ctx, v); err != nil {
		return nil, fmt.Errorf("create venue %q: %w", v.Name, err)
	}
	s.Logger.LogBooking("VENUE_CREATED", strconv.FormatInt(v.ID, 10), v.Name)
	return v, nil
}

func (s *BookingService) UpdateVenue(ctx context.Context, id int64, in VenueInput) (*models.Venue, error) {
	if err := validateStruct(in).orNil(); err != nil {
		return nil, err
	}
	v := &models.Venue{ID: id}
	in.toModel(v)
	if err := s.DB.UpdateVenue(ctx, v); err != nil {
		return nil, fmt.Errorf("update venue %d: %w", id, err)
	}
	s.Logger.LogBooking("VENUE_UPDATED", strconv.FormatInt(id, 10), v.Name)
	return v, nil
}

func (s *BookingService) DeleteVenue(ctx context.Context, id int64) error {
	if err := s.DB.DeleteVenue(ctx, id); err != nil {
		return fmt.Errorf("delete venue %d: %w", id, err)
	}
	s.Logger.LogBooking("VENUE_DELETED", strconv.FormatInt(id, 10), "venue and its shows removed")
	s.publish(ctx, TopicVenueDeleted, id, map[string]int64{"venue_id": id})
	return nil
}

func (s *BookingService) CreateArtist(ctx context.Context, in ArtistInput) (*models.Artist, error) {
	verr := validateStruct(in)
	windows, _ := parseAvailabilities(in.Availabilities, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	for _, w := range windows {
		// New artists cannot own existing rows.
		w.ID = 0
	}

	a := &models.Artist{}
	in.toModel(a)
	if err := s.DB.CreateArtist(ctx, a, windows); err != nil {
		return nil, fmt.Errorf("create artist %q: %w", a.Name, err)
	}
	a.Availabilities = windows
	s.Logger.LogBooking("ARTIST_CREATED", strconv.FormatInt(a.ID, 10), fmt.Sprintf("%s with %d availability windows", a.Name, len(windows)))
	return a, nil
}

// UpdateArtist saves the artist and reconciles its windows: complete rows with an id are
// updated, rows with an id but missing fields are deleted, new complete rows are inserted.
func (s *BookingService) UpdateArtist(ctx context.Context, id int64, in ArtistInput) (*models.Artist, error) {
	verr := validateStruct(in)
	windows, incomplete := parseAvailabilities(in.Availabilities, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	changes := AvailabilityChanges{Delete: incomplete}
	for _, w := range windows {
		w.ArtistID = id
		if w.ID != 0 {
			changes.Update = append(changes.Update, w)
		} else {
			changes.Insert = append(changes.Insert, w)
		}
	}

	a := &models.Artist{ID: id}
	in.toModel(a)
	if err := s.DB.UpdateArtist(ctx, a, changes); err != nil {
		return nil, fmt.Errorf("update artist %d: %w", id, err)
	}
	s.Logger.LogBooking("ARTIST_UPDATED", strconv.FormatInt(id, 10),
		fmt.Sprintf("%d windows updated, %d added, %d removed", len(changes.Update), len(changes.Insert), len(changes.Delete)))
	return a, nil
}

func (s *BookingService) DeleteArtist(ctx context.Context, id int64) error {
	if err := s.DB.DeleteArtist(ctx, id); err != nil {
		return fmt.Errorf("delete artist %d: %w", id, err)
	}
	s.Logger.LogBooking("ARTIST_DELETED", strconv.FormatInt(id, 10), "artist, shows and availability removed")
	s.publish(ctx, TopicArtistDeleted, id, map[string]int64{"artist_id": id})
	return nil
}

func (s *BookingService) Shows(ctx context.Context) ([]ShowEntry, error) {
	shows, err := s.DB.ListShows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	return entries(shows), nil
}

func (s *BookingService) Show(ctx context.Context, id int64) (*ShowEntry, error) {
	show, err := s.DB.GetShow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("show %d: %w", id, err)
	}
	e := entries([]*models.Show{show})[0]
	return &e, nil
}

// CreateShow books a show if the start time falls inside one of the artist's weekly
// availability windows. Weekday and time of day are taken in the service location.
func (s *BookingService) CreateShow(ctx context.Context, in ShowInput) (*models.Show, error) {
	if err := validateStruct(in).orNil(); err != nil {
		return nil, err
	}

	local := in.StartTime.In(s.Location)
	day := models.ISOWeekday(local)
	at := models.TimeOfDayOf(local)

	show := &models.Show{
		ArtistID:  in.ArtistID,
		VenueID:   in.VenueID,
		StartTime: in.StartTime.UTC(),
	}
	if err := s.DB.BookShow(ctx, show, day, at); err != nil {
		return nil, fmt.Errorf("book artist %d at venue %d on %s %s: %w", in.ArtistID, in.VenueID, day, at, err)
	}

	s.Logger.LogBooking("SHOW_CREATED", strconv.FormatInt(show.ID, 10),
		fmt.Sprintf("artist %d at venue %d on %s", show.ArtistID, show.VenueID, local.Format(time.RFC3339)))
	s.publish(ctx, TopicShowCreated, show.ID, show)
	return show, nil
}

// publish reports failures in the log only; the write has already been committed.
func (s *BookingService) publish(ctx context.Context, topic string, id int64, payload any) {
	if s.Events == nil {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to marshal %s payload: %v", topic, err))
		return
	}
	// The event outlives the request: a client hanging up after commit must not drop it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()
	if err := s.Events.Publish(ctx, topic, strconv.FormatInt(id, 10), value); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s: %v", topic, err))
	}
}
