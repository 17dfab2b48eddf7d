package web

import (
	"net/url"
	"time"

	"journal/internal/things"
)

type CalendarMonth struct {
	Label   string
	PrevURL string
	NextURL string
	Weeks   []CalendarWeek
}

type CalendarWeek struct {
	Days []CalendarDay
}

type CalendarDay struct {
	Date     string
	Day      int
	InMonth  bool
	HasEntry bool
	Today    bool
	URL      string
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// parseMonth reads a YYYY-MM value, falling back to the month of now.
func parseMonth(raw string, now time.Time) time.Time {
	if raw != "" {
		if t, err := time.Parse("2006-01", raw); err == nil {
			return monthStart(t)
		}
	}
	return monthStart(now)
}

// monthGrid returns the first and last day shown for month; weeks start on Sunday.
func monthGrid(month time.Time) (things.Date, things.Date) {
	start := monthStart(month)
	end := start.AddDate(0, 1, -1)
	gridStart := start.AddDate(0, 0, -int(start.Weekday()))
	gridEnd := end.AddDate(0, 0, int(time.Saturday-end.Weekday()))
	return things.DateOf(gridStart), things.DateOf(gridEnd)
}

func buildCalendarMonth(now, month time.Time, entries []things.Date, basePath string) CalendarMonth {
	start := monthStart(month)
	has := make(map[string]bool, len(entries))
	for _, d := range entries {
		has[d.String()] = true
	}
	today := things.DateOf(now.UTC())
	from, to := monthGrid(start)

	var weeks []CalendarWeek
	var days []CalendarDay
	for day := from; !day.After(to); day = day.AddDays(1) {
		key := day.String()
		cd := CalendarDay{
			Date:     key,
			Day:      day.Time().Day(),
			InMonth:  day.Time().Month() == start.Month(),
			HasEntry: has[key],
			Today:    day.Equal(today),
		}
		if cd.HasEntry {
			cd.URL = dateSearchURL(day)
		}
		days = append(days, cd)
		if len(days) == 7 {
			weeks = append(weeks, CalendarWeek{Days: days})
			days = nil
		}
	}

	return CalendarMonth{
		Label:   start.Format("January 2006"),
		PrevURL: basePath + "?month=" + start.AddDate(0, -1, 0).Format("2006-01"),
		NextURL: basePath + "?month=" + start.AddDate(0, 1, 0).Format("2006-01"),
		Weeks:   weeks,
	}
}

func dateSearchURL(d things.Date) string {
	q := things.Search{DateMode: things.DateOn, From: d}.Values()
	return "/pages/search?" + q.Encode()
}

func tagSearchURL(tag string) string {
	q := url.Values{}
	q.Set(things.ParamSearchTags, "on")
	q.Set(things.ParamTagsQuery, tag)
	return "/pages/search?" + q.Encode()
}
