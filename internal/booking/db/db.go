package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ms-fyyur/internal/booking"
	"ms-fyyur/internal/database"
	"ms-fyyur/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) RecentVenues(ctx context.Context, limit int) ([]*models.Venue, error) {
	var venues []*models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Order("v.id DESC").
		Limit(limit).
		Scan(ctx)
	return venues, err
}

func (d *DB) RecentArtists(ctx context.Context, limit int) ([]*models.Artist, error) {
	var artists []*models.Artist
	err := d.Bun.NewSelect().
		Model(&artists).
		Order("a.id DESC").
		Limit(limit).
		Scan(ctx)
	return artists, err
}

// ListVenues returns every venue with its shows, ordered by area.
func (d *DB) ListVenues(ctx context.Context) ([]*models.Venue, error) {
	var venues []*models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Relation("Shows").
		Order("v.state ASC", "v.city ASC", "v.id ASC").
		Scan(ctx)
	return venues, err
}

func (d *DB) ListArtists(ctx context.Context) ([]*models.Artist, error) {
	var artists []*models.Artist
	err := d.Bun.NewSelect().
		Model(&artists).
		Column("a.id", "a.name").
		Order("a.id ASC").
		Scan(ctx)
	return artists, err
}

// likePattern builds a substring pattern from an already folded term using ! as the escape character.
func likePattern(folded string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(folded) + "%"
}

// cityStateExpr mirrors models.CityState in SQL for the given table alias.
func cityStateExpr(alias string) string {
	return fmt.Sprintf(
		"LOWER(CASE WHEN COALESCE(%[1]s.city, '') = '' THEN COALESCE(%[1]s.state, '') ELSE %[1]s.city || ', ' || COALESCE(%[1]s.state, '') END)",
		alias,
	)
}

func (d *DB) searchWhere(alias, term string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("LOWER("+alias+".name) LIKE ? ESCAPE '!'", likePattern(database.Lower(d.Bun, term))).
			WhereOr(cityStateExpr(alias)+" = ?", database.Lower(d.Bun, strings.TrimSpace(term)))
	}
}

// SearchVenues matches a name substring or an exact "city, state" label, ignoring case.
func (d *DB) SearchVenues(ctx context.Context, term string) ([]*models.Venue, error) {
	var venues []*models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Relation("Shows").
		WhereGroup(" AND ", d.searchWhere("v", term)).
		Order("v.id ASC").
		Scan(ctx)
	return venues, err
}

func (d *DB) SearchArtists(ctx context.Context, term string) ([]*models.Artist, error) {
	var artists []*models.Artist
	err := d.Bun.NewSelect().
		Model(&artists).
		Relation("Shows").
		WhereGroup(" AND ", d.searchWhere("a", term)).
		Order("a.id ASC").
		Scan(ctx)
	return artists, err
}

// GetVenue loads a venue with its shows and their artists, oldest first.
func (d *DB) GetVenue(ctx context.Context, id int64) (*models.Venue, error) {
	venue := new(models.Venue)
	err := d.Bun.NewSelect().Model(venue).Where("v.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}

	err = d.Bun.NewSelect().
		Model(&venue.Shows).
		Relation("Artist").
		Where("s.venue_id = ?", id).
		Order("s.start_time ASC", "s.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return venue, nil
}

// GetArtist loads an artist with its shows (and their venues) and availability windows.
func (d *DB) GetArtist(ctx context.Context, id int64) (*models.Artist, error) {
	artist := new(models.Artist)
	err := d.Bun.NewSelect().
		Model(artist).
		Relation("Availabilities", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("aa.day ASC", "aa.time_from ASC", "aa.id ASC")
		}).
		Where("a.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrArtistNotFound
	}
	if err != nil {
		return nil, err
	}

	err = d.Bun.NewSelect().
		Model(&artist.Shows).
		Relation("Venue").
		Where("s.artist_id = ?", id).
		Order("s.start_time ASC", "s.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return artist, nil
}

func (d *DB) CreateVenue(ctx context.Context, venue *models.Venue) error {
	_, err := d.Bun.NewInsert().Model(venue).Exec(ctx)
	return err
}

func (d *DB) UpdateVenue(ctx context.Context, venue *models.Venue) error {
	res, err := d.Bun.NewUpdate().
		Model(venue).
		Column("name", "city", "state", "address", "phone", "image_link", "facebook_link",
			"website", "genres", "seeking_talent", "seeking_description").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, booking.ErrVenueNotFound)
}

// DeleteVenue removes the venue together with its shows.
func (d *DB) DeleteVenue(ctx context.Context, id int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Show)(nil)).Where("venue_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Venue)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		return expectRow(res, booking.ErrVenueNotFound)
	})
}

// CreateArtist inserts the artist and its windows in one transaction.
func (d *DB) CreateArtist(ctx context.Context, artist *models.Artist, windows []*models.ArtistAvailability) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(artist).Exec(ctx); err != nil {
			return err
		}
		if len(windows) == 0 {
			return nil
		}
		for _, w := range windows {
			w.ArtistID = artist.ID
		}
		_, err := tx.NewInsert().Model(&windows).Exec(ctx)
		return err
	})
}

func (d *DB) UpdateArtist(ctx context.Context, artist *models.Artist, changes booking.AvailabilityChanges) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(artist).
			Column("name", "city", "state", "phone", "image_link", "facebook_link",
				"website", "genres", "seeking_venue", "seeking_description").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		if err := expectRow(res, booking.ErrArtistNotFound); err != nil {
			return err
		}

		for _, w := range changes.Update {
			_, err := tx.NewUpdate().
				Model(w).
				Column("day", "time_from", "time_to").
				Where("id = ?", w.ID).
				Where("artist_id = ?", artist.ID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		if len(changes.Delete) > 0 {
			_, err := tx.NewDelete().
				Model((*models.ArtistAvailability)(nil)).
				Where("id IN (?)", bun.In(changes.Delete)).
				Where("artist_id = ?", artist.ID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		if len(changes.Insert) > 0 {
			for _, w := range changes.Insert {
				w.ArtistID = artist.ID
			}
			if _, err := tx.NewInsert().Model(&changes.Insert).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteArtist removes the artist with its shows and availability windows.
func (d *DB) DeleteArtist(ctx context.Context, id int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Show)(nil)).Where("artist_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.ArtistAvailability)(nil)).Where("artist_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Artist)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		return expectRow(res, booking.ErrArtistNotFound)
	})
}

func (d *DB) ListShows(ctx context.Context) ([]*models.Show, error) {
	var shows []*models.Show
	err := d.Bun.NewSelect().
		Model(&shows).
		Relation("Venue").
		Relation("Artist").
		Order("s.start_time ASC", "s.id ASC").
		Scan(ctx)
	return shows, err
}

func (d *DB) GetShow(ctx context.Context, id int64) (*models.Show, error) {
	show := new(models.Show)
	err := d.Bun.NewSelect().
		Model(show).
		Relation("Venue").
		Relation("Artist").
		Where("s.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrShowNotFound
	}
	return show, err
}

// BookShow inserts the show only if the artist has a window on day that covers at.
// The lookup and the insert share one transaction.
func (d *DB) BookShow(ctx context.Context, show *models.Show, day models.Weekday, at models.TimeOfDay) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Artist)(nil)).Where("id = ?", show.ArtistID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return booking.ErrArtistNotFound
		}

		exists, err = tx.NewSelect().Model((*models.Venue)(nil)).Where("id = ?", show.VenueID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return booking.ErrVenueNotFound
		}

		var windows []*models.ArtistAvailability
		err = tx.NewSelect().
			Model(&windows).
			Where("artist_id = ?", show.ArtistID).
			Where("day = ?", int(day)).
			Scan(ctx)
		if err != nil {
			return err
		}

		available := false
		for _, w := range windows {
			if w.Covers(day, at) {
				available = true
				break
			}
		}
		if !available {
			return booking.ErrArtistUnavailable
		}

		_, err = tx.NewInsert().Model(show).Exec(ctx)
		return err
	})
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
