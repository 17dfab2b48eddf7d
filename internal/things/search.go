package things

import (
	"fmt"
	"net/url"
	"strings"
)

type DateMode string

const (
	DateOn      DateMode = "on"
	DateBefore  DateMode = "before"
	DateAfter   DateMode = "after"
	DateBetween DateMode = "between"
)

// Query parameter names of the search form.
const (
	ParamSearchText   = "searchText"
	ParamTextQuery    = "textQuery"
	ParamSearchTags   = "searchTags"
	ParamTagsQuery    = "tagsQuery"
	ParamOperator     = "operator"
	ParamSearchByDate = "searchByDate"
	ParamDateQuery    = "dateQuery"
	ParamDateRadio    = "date-radio"
)

// Search is a set of optional filters. Active filters are AND-combined;
// a Search with no active filter matches everything.
type Search struct {
	Text string

	Tags []string
	// MatchAll requires every tag instead of any of them.
	MatchAll bool

	DateMode DateMode
	// From is the compared date for on, before and after; From and To
	// bound between inclusively.
	From Date
	To   Date
}

func (s Search) HasText() bool { return s.Text != "" }
func (s Search) HasTags() bool { return len(s.Tags) > 0 }
func (s Search) HasDate() bool { return s.DateMode != "" }

func (s Search) IsEmpty() bool {
	return !s.HasText() && !s.HasTags() && !s.HasDate()
}

// ParseSearch reads the search form. A filter is active when its query is
// non-empty and either its enable flag is set or the request carries no
// enable flag at all.
func ParseSearch(q url.Values) (Search, error) {
	flagged := q.Has(ParamSearchText) || q.Has(ParamSearchTags) || q.Has(ParamSearchByDate)
	enabled := func(flag string) bool {
		return !flagged || isChecked(q.Get(flag))
	}

	var s Search
	if text := strings.TrimSpace(q.Get(ParamTextQuery)); text != "" && enabled(ParamSearchText) {
		s.Text = text
	}
	if tags := ParseTags(q.Get(ParamTagsQuery)); len(tags) > 0 && enabled(ParamSearchTags) {
		s.Tags = tags
		s.MatchAll = isChecked(q.Get(ParamOperator))
	}
	if raw := strings.TrimSpace(q.Get(ParamDateQuery)); raw != "" && enabled(ParamSearchByDate) {
		if err := s.parseDate(q.Get(ParamDateRadio), raw); err != nil {
			return Search{}, err
		}
	}
	return s, nil
}

func (s *Search) parseDate(mode, raw string) error {
	switch DateMode(strings.ToLower(strings.TrimSpace(mode))) {
	case "", DateOn:
		s.DateMode = DateOn
	case DateBefore:
		s.DateMode = DateBefore
	case DateAfter:
		s.DateMode = DateAfter
	case DateBetween:
		s.DateMode = DateBetween
	default:
		return fmt.Errorf("%w: unknown date mode %q", ErrInvalidSearch, mode)
	}

	if s.DateMode != DateBetween {
		d, err := ParseDate(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSearch, err)
		}
		s.From = d
		return nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return fmt.Errorf("%w: between needs two dates separated by a comma", ErrInvalidSearch)
	}
	from, err := ParseDate(parts[0])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSearch, err)
	}
	to, err := ParseDate(parts[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSearch, err)
	}
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: between needs two dates separated by a comma", ErrInvalidSearch)
	}
	if to.Before(from) {
		from, to = to, from
	}
	s.From, s.To = from, to
	return nil
}

// Values encodes s back into search form parameters.
func (s Search) Values() url.Values {
	q := url.Values{}
	if s.HasText() {
		q.Set(ParamSearchText, "on")
		q.Set(ParamTextQuery, s.Text)
	}
	if s.HasTags() {
		q.Set(ParamSearchTags, "on")
		q.Set(ParamTagsQuery, strings.Join(s.Tags, ","))
		if s.MatchAll {
			q.Set(ParamOperator, "on")
		}
	}
	if s.HasDate() {
		q.Set(ParamSearchByDate, "on")
		q.Set(ParamDateRadio, string(s.DateMode))
		if s.DateMode == DateBetween {
			q.Set(ParamDateQuery, s.From.String()+","+s.To.String())
		} else {
			q.Set(ParamDateQuery, s.From.String())
		}
	}
	return q
}

// Describe renders the active filters for result headings.
func (s Search) Describe() string {
	var parts []string
	if s.HasText() {
		parts = append(parts, fmt.Sprintf("text contains %q", s.Text))
	}
	if s.HasTags() {
		op := " or "
		if s.MatchAll {
			op = " and "
		}
		parts = append(parts, "tagged "+strings.Join(s.Tags, op))
	}
	if s.HasDate() {
		switch s.DateMode {
		case DateBetween:
			parts = append(parts, "dated between "+s.From.String()+" and "+s.To.String())
		default:
			parts = append(parts, "dated "+string(s.DateMode)+" "+s.From.String())
		}
	}
	if len(parts) == 0 {
		return "everything"
	}
	return strings.Join(parts, ", ")
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "off", "false", "no":
		return false
	}
	return true
}
