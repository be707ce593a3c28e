package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type Genre string

const (
	GenreAlternative    Genre = "Alternative"
	GenreBlues          Genre = "Blues"
	GenreClassical      Genre = "Classical"
	GenreCountry        Genre = "Country"
	GenreElectronic     Genre = "Electronic"
	GenreFolk           Genre = "Folk"
	GenreFunk           Genre = "Funk"
	GenreHipHop         Genre = "Hip-Hop"
	GenreHeavyMetal     Genre = "Heavy Metal"
	GenreInstrumental   Genre = "Instrumental"
	GenreJazz           Genre = "Jazz"
	GenreMusicalTheatre Genre = "Musical Theatre"
	GenrePop            Genre = "Pop"
	GenrePunk           Genre = "Punk"
	GenreRnB            Genre = "R&B"
	GenreReggae         Genre = "Reggae"
	GenreRockNRoll      Genre = "Rock n Roll"
	GenreSoul           Genre = "Soul"
	GenreSwing          Genre = "Swing"
	GenreOther          Genre = "Other"
)

// AllGenres is the list offered by the venue and artist forms, in display order.
var AllGenres = []Genre{
	GenreAlternative, GenreBlues, GenreClassical, GenreCountry, GenreElectronic,
	GenreFolk, GenreFunk, GenreHipHop, GenreHeavyMetal, GenreInstrumental,
	GenreJazz, GenreMusicalTheatre, GenrePop, GenrePunk, GenreRnB,
	GenreReggae, GenreRockNRoll, GenreSoul, GenreSwing, GenreOther,
}

func (g Genre) Valid() bool {
	for _, known := range AllGenres {
		if g == known {
			return true
		}
	}
	return false
}

// ParseGenres converts submitted form values into genres, rejecting unknown names.
func ParseGenres(values []string) (Genres, error) {
	genres := make(Genres, 0, len(values))
	for _, v := range values {
		g := Genre(strings.TrimSpace(v))
		if g == "" {
			continue
		}
		if !g.Valid() {
			return nil, fmt.Errorf("unknown genre %q", v)
		}
		genres = append(genres, g)
	}
	return genres, nil
}

// Genres is stored as a single comma-joined column.
type Genres []Genre

func (gs Genres) Strings() []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = string(g)
	}
	return out
}

func (gs Genres) Contains(g Genre) bool {
	for _, x := range gs {
		if x == g {
			return true
		}
	}
	return false
}

func (gs Genres) Value() (driver.Value, error) {
	return strings.Join(gs.Strings(), ","), nil
}

func (gs *Genres) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*gs = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("genres: unsupported column type %T", src)
	}

	if s == "" {
		*gs = Genres{}
		return nil
	}
	parts := strings.Split(s, ",")
	out := make(Genres, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, Genre(p))
		}
	}
	*gs = out
	return nil
}
