package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"ms-fyyur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityState(t *testing.T) {
	assert.Equal(t, "San Francisco, CA", models.CityState("San Francisco", "CA"))
	assert.Equal(t, "CA", models.CityState("", "CA"))

	v := &models.Venue{City: "New York", State: "NY"}
	assert.Equal(t, "New York, NY", v.CityState())
}

func TestGenresRoundTripThroughColumn(t *testing.T) {
	genres := models.Genres{models.GenreJazz, models.GenreReggae, models.GenreRnB}

	v, err := genres.Value()
	require.NoError(t, err)
	assert.Equal(t, "Jazz,Reggae,R&B", v)

	var scanned models.Genres
	require.NoError(t, scanned.Scan([]byte("Jazz, Reggae,,R&B")))
	assert.Equal(t, genres, scanned)

	require.NoError(t, scanned.Scan(""))
	assert.Empty(t, scanned)

	assert.Error(t, scanned.Scan(42))
}

func TestParseGenres(t *testing.T) {
	genres, err := models.ParseGenres([]string{"Jazz", " Hip-Hop ", ""})
	require.NoError(t, err)
	assert.Equal(t, models.Genres{models.GenreJazz, models.GenreHipHop}, genres)
	assert.True(t, genres.Contains(models.GenreHipHop))

	_, err = models.ParseGenres([]string{"Jazz", "Polka"})
	assert.Error(t, err)
}

func TestParseTimeOfDay(t *testing.T) {
	cases := map[string]models.TimeOfDay{
		"00:00":           0,
		"09:30":           models.NewTimeOfDay(9, 30, 0),
		"23:59:59":        models.NewTimeOfDay(23, 59, 59),
		"18:00:00.000000": models.NewTimeOfDay(18, 0, 0),
	}
	for in, want := range cases {
		got, err := models.ParseTimeOfDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "9", "24:00", "12:60", "aa:bb", "1:2:3:4"} {
		_, err := models.ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestTimeOfDayColumnAndJSON(t *testing.T) {
	tod := models.NewTimeOfDay(13, 5, 9)

	v, err := tod.Value()
	require.NoError(t, err)
	assert.Equal(t, "13:05:09", v)

	var scanned models.TimeOfDay
	require.NoError(t, scanned.Scan("13:05:09"))
	assert.Equal(t, tod, scanned)
	require.NoError(t, scanned.Scan(time.Date(0, 1, 1, 13, 5, 9, 0, time.UTC)))
	assert.Equal(t, tod, scanned)

	data, err := json.Marshal(tod)
	require.NoError(t, err)
	assert.Equal(t, `"13:05"`, string(data))

	var decoded models.TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"07:45"`), &decoded))
	assert.Equal(t, models.NewTimeOfDay(7, 45, 0), decoded)
}

func TestISOWeekday(t *testing.T) {
	monday := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, models.Weekday(1), models.ISOWeekday(monday))
	assert.Equal(t, models.Weekday(7), models.ISOWeekday(monday.AddDate(0, 0, 6)))
	assert.Equal(t, "Sunday", models.ISOWeekday(monday.AddDate(0, 0, 6)).String())
	assert.Equal(t, "Unknown", models.Weekday(0).String())
}

func TestAvailabilityCovers(t *testing.T) {
	window := &models.ArtistAvailability{
		Day:      5,
		TimeFrom: models.NewTimeOfDay(18, 0, 0),
		TimeTo:   models.NewTimeOfDay(23, 0, 0),
	}

	assert.True(t, window.Covers(5, models.NewTimeOfDay(18, 0, 0)))
	assert.True(t, window.Covers(5, models.NewTimeOfDay(23, 0, 0)))
	assert.True(t, window.Covers(5, models.NewTimeOfDay(20, 30, 0)))
	assert.False(t, window.Covers(5, models.NewTimeOfDay(23, 0, 1)))
	assert.False(t, window.Covers(4, models.NewTimeOfDay(20, 0, 0)))
	assert.Equal(t, "Friday", window.DayName())

	overnight := &models.ArtistAvailability{
		Day:      5,
		TimeFrom: models.NewTimeOfDay(22, 0, 0),
		TimeTo:   models.NewTimeOfDay(2, 0, 0),
	}
	assert.False(t, overnight.Covers(5, models.NewTimeOfDay(23, 0, 0)))
	assert.False(t, overnight.Covers(5, models.NewTimeOfDay(1, 0, 0)))
}

func TestPartitionShows(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	past := &models.Show{ID: 1, StartTime: now.Add(-time.Hour)}
	atNow := &models.Show{ID: 2, StartTime: now}
	future := &models.Show{ID: 3, StartTime: now.Add(time.Hour)}

	gotPast, gotUpcoming := models.PartitionShows([]*models.Show{past, atNow, future}, now)
	assert.Equal(t, []*models.Show{past, atNow}, gotPast)
	assert.Equal(t, []*models.Show{future}, gotUpcoming)
	assert.Equal(t, 1, models.CountUpcoming([]*models.Show{past, atNow, future}, now))

	gotPast, gotUpcoming = models.PartitionShows(nil, now)
	assert.NotNil(t, gotPast)
	assert.Empty(t, gotUpcoming)
}

func TestCategoryMap(t *testing.T) {
	m := models.CategoryMap([]models.Category{{ID: 1, Type: "Science"}, {ID: 2, Type: "Art"}})
	assert.Equal(t, map[string]string{"1": "Science", "2": "Art"}, m)
}
