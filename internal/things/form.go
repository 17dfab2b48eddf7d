package things

import (
	"net/url"
	"strings"
)

// Form holds the raw values of the add and edit forms.
type Form struct {
	Title string
	Text  string
	Link  string
	Tags  string
	Date  string
}

func FormFromValues(values url.Values) Form {
	return Form{
		Title: strings.TrimSpace(values.Get("title")),
		Text:  values.Get("text"),
		Link:  strings.TrimSpace(values.Get("link")),
		Tags:  values.Get("tags"),
		Date:  strings.TrimSpace(values.Get("date")),
	}
}

func FormFromThing(t Thing) Form {
	return Form{
		Title: t.Title,
		Text:  t.Text,
		Link:  t.Link,
		Tags:  FormatTags(t.Tags),
		Date:  t.Date.String(),
	}
}

// Apply overwrites the editable fields of t. Tags are always re-derived
// from the comma separated input.
func (f Form) Apply(t *Thing) error {
	date, err := ParseDate(f.Date)
	if err != nil {
		return err
	}
	t.Title = f.Title
	t.Text = f.Text
	t.Link = f.Link
	t.Tags = ParseTags(f.Tags)
	t.Date = date
	return nil
}

func (f Form) Thing() (Thing, error) {
	var t Thing
	if err := f.Apply(&t); err != nil {
		return Thing{}, err
	}
	return t, nil
}
