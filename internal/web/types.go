package web

import (
	"html/template"
	"net/url"

	"journal/internal/store"
	"journal/internal/things"
)

type ViewData struct {
	Title           string
	ContentTemplate string
	ContentHTML     template.HTML
	User            string
	AuthEnabled     bool
	Toasts          []Toast

	Cards    []ThingCard
	Page     store.PageResult
	Calendar CalendarMonth

	Thing        things.Thing
	RenderedHTML template.HTML

	Form       things.Form
	FormAction string
	Error      string

	SearchForm    SearchForm
	SearchSummary string
	Searched      bool

	Tags         []store.TagCount
	DeletedTitle string
	LoginNext    string
	Status       int
}

type ThingCard struct {
	Thing        things.Thing
	RenderedHTML template.HTML
}

// SearchForm echoes the raw search parameters back into the form.
type SearchForm struct {
	SearchText   bool
	TextQuery    string
	SearchTags   bool
	TagsQuery    string
	Operator     bool
	SearchByDate bool
	DateQuery    string
	DateRadio    string
}

func searchFormFrom(q url.Values) SearchForm {
	f := SearchForm{
		SearchText:   q.Get(things.ParamSearchText) != "",
		TextQuery:    q.Get(things.ParamTextQuery),
		SearchTags:   q.Get(things.ParamSearchTags) != "",
		TagsQuery:    q.Get(things.ParamTagsQuery),
		Operator:     q.Get(things.ParamOperator) != "",
		SearchByDate: q.Get(things.ParamSearchByDate) != "",
		DateQuery:    q.Get(things.ParamDateQuery),
		DateRadio:    q.Get(things.ParamDateRadio),
	}
	if f.DateRadio == "" {
		f.DateRadio = string(things.DateOn)
	}
	return f
}
