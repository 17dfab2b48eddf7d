package things

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("thing not found")
	ErrDateTaken     = errors.New("date already used by another entry")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidSearch = errors.New("invalid search")
)

type Thing struct {
	ID    int64
	Title string
	Text  string
	Link  string
	Tags  []string
	Date  Date
}

// Label is what list pages show when a thing has no title.
func (t Thing) Label() string {
	if title := strings.TrimSpace(t.Title); title != "" {
		return title
	}
	if !t.Date.IsZero() {
		return t.Date.String()
	}
	return "Untitled"
}

const DateLayout = "2006-01-02"

// Date is a calendar day without time or zone. The zero value means unset.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) Time() time.Time {
	return d.t
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}
