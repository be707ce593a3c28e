package database

import (
	"context"
	"fmt"
	"time"

	"ms-fyyur/internal/models"

	"github.com/uptrace/bun"
)

// Seed loads the sample venues, artists, shows and trivia questions into empty tables.
// Tables that already hold rows are left alone.
func Seed(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		venues, err := tx.NewSelect().Model((*models.Venue)(nil)).Count(ctx)
		if err != nil {
			return fmt.Errorf("count venues: %w", err)
		}
		if venues == 0 {
			if err := seedBooking(ctx, tx); err != nil {
				return err
			}
		}

		categories, err := tx.NewSelect().Model((*models.Category)(nil)).Count(ctx)
		if err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if categories == 0 {
			if err := seedTrivia(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedBooking(ctx context.Context, tx bun.Tx) error {
	venues := []*models.Venue{
		{
			Name:               "The Musical Hop",
			Genres:             models.Genres{models.GenreJazz, models.GenreReggae, models.GenreSwing, models.GenreClassical, models.GenreFolk},
			Address:            "1015 Folsom Street",
			City:               "San Francisco",
			State:              "CA",
			Phone:              "123-123-1234",
			Website:            "https://www.themusicalhop.com",
			FacebookLink:       "https://www.facebook.com/TheMusicalHop",
			SeekingTalent:      true,
			SeekingDescription: "We are on the lookout for a local artist to play every two weeks. Please call us.",
			ImageLink:          "https://images.unsplash.com/photo-1543900694-133f37abaaa5?w=400",
		},
		{
			Name:         "The Dueling Pianos Bar",
			Genres:       models.Genres{models.GenreClassical, models.GenreRnB, models.GenreHipHop},
			Address:      "335 Delancey Street",
			City:         "New York",
			State:        "NY",
			Phone:        "914-003-1132",
			Website:      "https://www.theduelingpianos.com",
			FacebookLink: "https://www.facebook.com/theduelingpianos",
			ImageLink:    "https://images.unsplash.com/photo-1497032205916-ac775f0649ae?w=750",
		},
		{
			Name:         "Park Square Live Music & Coffee",
			Genres:       models.Genres{models.GenreRockNRoll, models.GenreJazz, models.GenreClassical, models.GenreFolk},
			Address:      "34 Whiskey Moore Ave",
			City:         "San Francisco",
			State:        "CA",
			Phone:        "415-000-1234",
			Website:      "https://www.parksquarelivemusicandcoffee.com",
			FacebookLink: "https://www.facebook.com/ParkSquareLiveMusicAndCoffee",
			ImageLink:    "https://images.unsplash.com/photo-1485686531765-ba63b07845a7?w=747",
		},
	}
	if _, err := tx.NewInsert().Model(&venues).Exec(ctx); err != nil {
		return fmt.Errorf("seed venues: %w", err)
	}

	artists := []*models.Artist{
		{
			Name:               "Guns N Petals",
			Genres:             models.Genres{models.GenreRockNRoll},
			City:               "San Francisco",
			State:              "CA",
			Phone:              "326-123-5000",
			Website:            "https://www.gunsnpetalsband.com",
			FacebookLink:       "https://www.facebook.com/GunsNPetals",
			SeekingVenue:       true,
			SeekingDescription: "Looking for shows to perform at in the San Francisco Bay Area!",
			ImageLink:          "https://images.unsplash.com/photo-1549213783-8284d0336c4f?w=300",
		},
		{
			Name:         "Matt Quevedo",
			Genres:       models.Genres{models.GenreJazz},
			City:         "New York",
			State:        "NY",
			Phone:        "300-400-5000",
			FacebookLink: "https://www.facebook.com/mattquevedo923251523",
			ImageLink:    "https://images.unsplash.com/photo-1495223153807-b916f75de8c5?w=334",
		},
		{
			Name:      "The Wild Sax Band",
			Genres:    models.Genres{models.GenreJazz, models.GenreClassical},
			City:      "San Francisco",
			State:     "CA",
			Phone:     "432-325-5432",
			ImageLink: "https://images.unsplash.com/photo-1558369981-f9ca78462e61?w=794",
		},
	}
	if _, err := tx.NewInsert().Model(&artists).Exec(ctx); err != nil {
		return fmt.Errorf("seed artists: %w", err)
	}

	evening := func(d models.Weekday) *models.ArtistAvailability {
		return &models.ArtistAvailability{Day: d, TimeFrom: models.NewTimeOfDay(18, 0, 0), TimeTo: models.NewTimeOfDay(23, 59, 0)}
	}
	var availabilities []*models.ArtistAvailability
	for _, a := range artists {
		for _, d := range []models.Weekday{2, 5, 6} {
			w := evening(d)
			w.ArtistID = a.ID
			availabilities = append(availabilities, w)
		}
	}
	if _, err := tx.NewInsert().Model(&availabilities).Exec(ctx); err != nil {
		return fmt.Errorf("seed availabilities: %w", err)
	}

	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	shows := []*models.Show{
		{VenueID: venues[0].ID, ArtistID: artists[0].ID, StartTime: at("2019-05-21T21:30:00Z")},
		{VenueID: venues[2].ID, ArtistID: artists[1].ID, StartTime: at("2019-06-15T23:00:00Z")},
		{VenueID: venues[2].ID, ArtistID: artists[2].ID, StartTime: at("2035-04-01T20:00:00Z")},
		{VenueID: venues[2].ID, ArtistID: artists[2].ID, StartTime: at("2035-04-08T20:00:00Z")},
		{VenueID: venues[2].ID, ArtistID: artists[2].ID, StartTime: at("2035-04-15T20:00:00Z")},
	}
	if _, err := tx.NewInsert().Model(&shows).Exec(ctx); err != nil {
		return fmt.Errorf("seed shows: %w", err)
	}
	return nil
}

type seedQuestion struct {
	question   string
	answer     string
	category   string
	difficulty int
}

var seedQuestions = []seedQuestion{
	{"Whose autobiography is entitled 'I Know Why the Caged Bird Sings'?", "Maya Angelou", "History", 2},
	{"What boxer's original name is Cassius Clay?", "Muhammad Ali", "History", 1},
	{"What movie earned Tom Hanks his third straight Oscar nomination, in 1996?", "Apollo 13", "Entertainment", 4},
	{"What actor did author Anne Rice first denounce, then praise in the role of her beloved Lestat?", "Tom Cruise", "Entertainment", 4},
	{"Which is the only team to play in every soccer World Cup tournament?", "Brazil", "Sports", 3},
	{"Which country won the first ever soccer World Cup in 1930?", "Uruguay", "Sports", 4},
	{"Who invented Peanut Butter?", "George Washington Carver", "History", 2},
	{"What is the largest lake in Africa?", "Lake Victoria", "Geography", 2},
	{"In which royal palace would you find the Hall of Mirrors?", "The Palace of Versailles", "Geography", 3},
	{"The Taj Mahal is located in which Indian city?", "Agra", "Geography", 2},
	{"Which Dutch graphic artist (initials M C) was a creator of optical illusions?", "Escher", "Art", 1},
	{"La Giaconda is better known as what?", "Mona Lisa", "Art", 3},
	{"How many paintings did Van Gogh sell in his lifetime?", "One", "Art", 4},
	{"Which American artist was a pioneer of Abstract Expressionism, and a leading exponent of action painting?", "Jackson Pollock", "Art", 2},
	{"What is the heaviest organ in the human body?", "The Liver", "Science", 4},
	{"Who discovered penicillin?", "Alexander Fleming", "Science", 3},
	{"Hematology is a branch of medicine involving the study of what?", "Blood", "Science", 4},
	{"Which dung beetle was worshipped by the ancient Egyptians?", "Scarab", "History", 4},
}

func seedTrivia(ctx context.Context, tx bun.Tx) error {
	names := []string{"Science", "Art", "Geography", "History", "Entertainment", "Sports"}
	categories := make([]*models.Category, len(names))
	for i, n := range names {
		categories[i] = &models.Category{Type: n}
	}
	if _, err := tx.NewInsert().Model(&categories).Exec(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	ids := make(map[string]int64, len(categories))
	for _, c := range categories {
		ids[c.Type] = c.ID
	}

	questions := make([]*models.Question, len(seedQuestions))
	for i, q := range seedQuestions {
		questions[i] = &models.Question{
			Question:   q.question,
			Answer:     q.answer,
			Category:   ids[q.category],
			Difficulty: q.difficulty,
		}
	}
	if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
		return fmt.Errorf("seed questions: %w", err)
	}
	return nil
}
