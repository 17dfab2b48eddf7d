package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal/internal/things"
)

func TestBuildCalendarMonthMarksEntries(t *testing.T) {
	now := time.Date(2020, time.February, 14, 10, 0, 0, 0, time.UTC)
	entries := []things.Date{things.NewDate(2020, time.February, 3), things.NewDate(2020, time.March, 1)}
	cal := buildCalendarMonth(now, now, entries, "/pages/1")

	assert.Equal(t, "February 2020", cal.Label)
	assert.Equal(t, "/pages/1?month=2020-01", cal.PrevURL)
	assert.Equal(t, "/pages/1?month=2020-03", cal.NextURL)
	// Feb 2020 starts on a Saturday and ends on a Saturday: 5 full weeks.
	require.Len(t, cal.Weeks, 5)
	assert.Equal(t, "2020-01-26", cal.Weeks[0].Days[0].Date)
	assert.Equal(t, "2020-02-29", cal.Weeks[4].Days[6].Date)

	var marked []string
	var today string
	for _, week := range cal.Weeks {
		for _, day := range week.Days {
			if day.HasEntry {
				marked = append(marked, day.Date)
				assert.Contains(t, day.URL, "dateQuery="+day.Date)
				assert.Contains(t, day.URL, "date-radio=on")
			}
			if day.Today {
				today = day.Date
			}
		}
	}
	assert.Equal(t, []string{"2020-02-03"}, marked)
	assert.Equal(t, "2020-02-14", today)
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2021, time.July, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC), parseMonth("2019-03", now))
	assert.Equal(t, time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC), parseMonth("bogus", now))
	assert.Equal(t, time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC), parseMonth("", now))
}
