package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-fyyur/internal/booking"
	"ms-fyyur/internal/booking/db"
	"ms-fyyur/internal/database"
	"ms-fyyur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := database.CreateSchema(context.Background(), bunDB); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })

	return &db.DB{Bun: bunDB}, bunDB
}

func seeded(t *testing.T) *db.DB {
	store, bunDB := setupTestDB(t)
	require.NoError(t, database.Seed(context.Background(), bunDB))
	return store
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, name(it))
	}
	return out
}

func venueName(v *models.Venue) string   { return v.Name }
func artistName(a *models.Artist) string { return a.Name }

func TestSearchVenues(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	venues, err := store.SearchVenues(ctx, "Hop")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Musical Hop"}, names(venues, venueName))

	venues, err = store.SearchVenues(ctx, "Music")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Musical Hop", "Park Square Live Music & Coffee"}, names(venues, venueName))

	venues, err = store.SearchVenues(ctx, "san francisco, ca")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Musical Hop", "Park Square Live Music & Coffee"}, names(venues, venueName))

	venues, err = store.SearchVenues(ctx, "San Francisco")
	require.NoError(t, err)
	assert.Empty(t, venues, "partial location labels do not match")

	venues, err = store.SearchVenues(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, venues, "wildcards are matched literally")

	// Shows are loaded for upcoming counts.
	venues, err = store.SearchVenues(ctx, "park square")
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Len(t, venues[0].Shows, 4)
}

func TestSearchVenuesNonASCII(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	require.NoError(t, store.CreateVenue(ctx, &models.Venue{Name: "ÉCOLE Sonore", City: "Évry", State: "FR"}))

	venues, err := store.SearchVenues(ctx, "ÉCOLE")
	require.NoError(t, err)
	assert.Equal(t, []string{"ÉCOLE Sonore"}, names(venues, venueName))

	venues, err = store.SearchVenues(ctx, "École sonore")
	require.NoError(t, err)
	assert.Equal(t, []string{"ÉCOLE Sonore"}, names(venues, venueName), "ASCII letters still fold")

	venues, err = store.SearchVenues(ctx, "Évry, FR")
	require.NoError(t, err)
	assert.Equal(t, []string{"ÉCOLE Sonore"}, names(venues, venueName))
}

func TestSearchArtists(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	artists, err := store.SearchArtists(ctx, "band")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Wild Sax Band"}, names(artists, artistName))

	artists, err = store.SearchArtists(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Guns N Petals", "Matt Quevedo", "The Wild Sax Band"}, names(artists, artistName))

	artists, err = store.SearchArtists(ctx, "New York, NY")
	require.NoError(t, err)
	assert.Equal(t, []string{"Matt Quevedo"}, names(artists, artistName))
}

func TestRecentAndListings(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	venues, err := store.RecentVenues(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Park Square Live Music & Coffee", "The Dueling Pianos Bar"}, names(venues, venueName))

	all, err := store.ListVenues(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "CA", all[0].State)
	assert.Equal(t, "NY", all[2].State)

	artists, err := store.ListArtists(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Guns N Petals", "Matt Quevedo", "The Wild Sax Band"}, names(artists, artistName))

	shows, err := store.ListShows(ctx)
	require.NoError(t, err)
	require.Len(t, shows, 5)
	assert.Equal(t, "The Musical Hop", shows[0].Venue.Name)
	assert.Equal(t, "Guns N Petals", shows[0].Artist.Name)
}

func TestGetVenueAndArtist(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	venues, err := store.SearchVenues(ctx, "park square")
	require.NoError(t, err)
	require.Len(t, venues, 1)

	venue, err := store.GetVenue(ctx, venues[0].ID)
	require.NoError(t, err)
	require.Len(t, venue.Shows, 4)
	assert.Equal(t, "Matt Quevedo", venue.Shows[0].Artist.Name)
	assert.True(t, venue.Shows[0].StartTime.Before(venue.Shows[1].StartTime))

	_, err = store.GetVenue(ctx, 9999)
	assert.ErrorIs(t, err, booking.ErrVenueNotFound)

	artist, err := store.GetArtist(ctx, venue.Shows[0].ArtistID)
	require.NoError(t, err)
	assert.Equal(t, "Matt Quevedo", artist.Name)
	require.Len(t, artist.Shows, 1)
	assert.Equal(t, "Park Square Live Music & Coffee", artist.Shows[0].Venue.Name)
	assert.Len(t, artist.Availabilities, 3)

	_, err = store.GetArtist(ctx, 9999)
	assert.ErrorIs(t, err, booking.ErrArtistNotFound)

	_, err = store.GetShow(ctx, 9999)
	assert.ErrorIs(t, err, booking.ErrShowNotFound)
}

func createArtist(t *testing.T, store *db.DB, name string, windows ...*models.ArtistAvailability) *models.Artist {
	artist := &models.Artist{Name: name, City: "Austin", State: "TX", Genres: models.Genres{models.GenreBlues}}
	require.NoError(t, store.CreateArtist(context.Background(), artist, windows))
	return artist
}

func friday(from, to int) *models.ArtistAvailability {
	return &models.ArtistAvailability{Day: 5, TimeFrom: models.NewTimeOfDay(from, 0, 0), TimeTo: models.NewTimeOfDay(to, 0, 0)}
}

func TestBookShowHonoursAvailability(t *testing.T) {
	ctx := context.Background()
	store, bunDB := setupTestDB(t)

	venue := &models.Venue{Name: "The Armadillo", City: "Austin", State: "TX", Genres: models.Genres{models.GenreBlues}}
	require.NoError(t, store.CreateVenue(ctx, venue))
	available := createArtist(t, store, "Night Owls", friday(18, 23))
	other := createArtist(t, store, "Early Birds", friday(6, 12))

	// 2024-05-10 is a Friday.
	start := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	show := &models.Show{ArtistID: available.ID, VenueID: venue.ID, StartTime: start}
	require.NoError(t, store.BookShow(ctx, show, 5, models.TimeOfDayOf(start)))
	assert.NotZero(t, show.ID)

	edge := &models.Show{ArtistID: available.ID, VenueID: venue.ID, StartTime: start}
	assert.NoError(t, store.BookShow(ctx, edge, 5, models.NewTimeOfDay(23, 0, 0)))

	late := &models.Show{ArtistID: available.ID, VenueID: venue.ID, StartTime: start}
	assert.ErrorIs(t, store.BookShow(ctx, late, 5, models.NewTimeOfDay(23, 0, 1)), booking.ErrArtistUnavailable)

	thursday := &models.Show{ArtistID: available.ID, VenueID: venue.ID, StartTime: start}
	assert.ErrorIs(t, store.BookShow(ctx, thursday, 4, models.NewTimeOfDay(20, 0, 0)), booking.ErrArtistUnavailable)

	// Another artist's window does not make this one available.
	morning := &models.Show{ArtistID: available.ID, VenueID: venue.ID, StartTime: start}
	assert.ErrorIs(t, store.BookShow(ctx, morning, 5, models.NewTimeOfDay(9, 0, 0)), booking.ErrArtistUnavailable)
	assert.NoError(t, store.BookShow(ctx, &models.Show{ArtistID: other.ID, VenueID: venue.ID, StartTime: start}, 5, models.NewTimeOfDay(9, 0, 0)))

	assert.ErrorIs(t, store.BookShow(ctx, &models.Show{ArtistID: 9999, VenueID: venue.ID}, 5, 0), booking.ErrArtistNotFound)
	assert.ErrorIs(t, store.BookShow(ctx, &models.Show{ArtistID: available.ID, VenueID: 9999}, 5, 0), booking.ErrVenueNotFound)

	count, err := bunDB.NewSelect().Model((*models.Show)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestBookShowIgnoresInvertedWindows(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestDB(t)

	venue := &models.Venue{Name: "Late Club", State: "TX"}
	require.NoError(t, store.CreateVenue(ctx, venue))
	artist := createArtist(t, store, "Overnighters", friday(22, 2))

	show := &models.Show{ArtistID: artist.ID, VenueID: venue.ID, StartTime: time.Now()}
	assert.ErrorIs(t, store.BookShow(ctx, show, 5, models.NewTimeOfDay(23, 0, 0)), booking.ErrArtistUnavailable)
}

func TestUpdateArtistReconcilesAvailability(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestDB(t)

	keep := friday(18, 23)
	drop := &models.ArtistAvailability{Day: 6, TimeFrom: models.NewTimeOfDay(12, 0, 0), TimeTo: models.NewTimeOfDay(14, 0, 0)}
	artist := createArtist(t, store, "Shifting Times", keep, drop)
	require.NotZero(t, keep.ID)
	require.NotZero(t, drop.ID)

	artist.Name = "Shifting Times Trio"
	changes := booking.AvailabilityChanges{
		Update: []*models.ArtistAvailability{{ID: keep.ID, ArtistID: artist.ID, Day: 5, TimeFrom: models.NewTimeOfDay(19, 0, 0), TimeTo: models.NewTimeOfDay(22, 0, 0)}},
		Insert: []*models.ArtistAvailability{{Day: 7, TimeFrom: models.NewTimeOfDay(10, 0, 0), TimeTo: models.NewTimeOfDay(11, 0, 0)}},
		Delete: []int64{drop.ID},
	}
	require.NoError(t, store.UpdateArtist(ctx, artist, changes))

	got, err := store.GetArtist(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shifting Times Trio", got.Name)
	require.Len(t, got.Availabilities, 2)
	assert.Equal(t, models.Weekday(5), got.Availabilities[0].Day)
	assert.Equal(t, models.NewTimeOfDay(19, 0, 0), got.Availabilities[0].TimeFrom)
	assert.Equal(t, models.Weekday(7), got.Availabilities[1].Day)

	missing := &models.Artist{ID: 9999, Name: "Ghost"}
	assert.ErrorIs(t, store.UpdateArtist(ctx, missing, booking.AvailabilityChanges{}), booking.ErrArtistNotFound)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store, bunDB := setupTestDB(t)

	venue := &models.Venue{Name: "Doomed Hall", City: "Austin", State: "TX"}
	require.NoError(t, store.CreateVenue(ctx, venue))
	artist := createArtist(t, store, "Doomed Band", friday(0, 23))
	start := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	require.NoError(t, store.BookShow(ctx, &models.Show{ArtistID: artist.ID, VenueID: venue.ID, StartTime: start}, 5, models.TimeOfDayOf(start)))

	require.NoError(t, store.DeleteVenue(ctx, venue.ID))
	shows, err := bunDB.NewSelect().Model((*models.Show)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, shows)
	assert.ErrorIs(t, store.DeleteVenue(ctx, venue.ID), booking.ErrVenueNotFound)

	require.NoError(t, store.DeleteArtist(ctx, artist.ID))
	windows, err := bunDB.NewSelect().Model((*models.ArtistAvailability)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, windows)
	assert.ErrorIs(t, store.DeleteArtist(ctx, artist.ID), booking.ErrArtistNotFound)
}

func TestUpdateVenue(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestDB(t)

	venue := &models.Venue{Name: "Old Name", City: "Austin", State: "TX", Genres: models.Genres{models.GenreJazz}}
	require.NoError(t, store.CreateVenue(ctx, venue))

	venue.Name = "New Name"
	venue.Genres = models.Genres{models.GenreFunk, models.GenreSoul}
	require.NoError(t, store.UpdateVenue(ctx, venue))

	got, err := store.GetVenue(ctx, venue.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, models.Genres{models.GenreFunk, models.GenreSoul}, got.Genres)
	assert.Empty(t, got.Shows)

	assert.ErrorIs(t, store.UpdateVenue(ctx, &models.Venue{ID: 9999, Name: "x"}), booking.ErrVenueNotFound)
}
