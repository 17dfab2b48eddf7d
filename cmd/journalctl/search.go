package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"journal/internal/things"
)

var (
	searchText     string
	searchTags     string
	searchMatchAll bool
	searchDate     string
	searchDateMode string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List entries matching text, tag and date filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := things.ParseSearch(searchValues())
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		results, err := st.Search(cmd.Context(), q)
		if err != nil {
			return err
		}
		if searchJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(toJSON(results))
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTITLE\tTAGS")
		for _, t := range results {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Date, t.Label(), strings.Join(t.Tags, ","))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		cmd.PrintErrf("%d result(s) for %s\n", len(results), q.Describe())
		return nil
	},
}

// searchValues maps the flags onto the query parameters the web form sends.
func searchValues() url.Values {
	v := url.Values{}
	if searchText != "" {
		v.Set(things.ParamSearchText, "on")
		v.Set(things.ParamTextQuery, searchText)
	}
	if searchTags != "" {
		v.Set(things.ParamSearchTags, "on")
		v.Set(things.ParamTagsQuery, searchTags)
		if searchMatchAll {
			v.Set(things.ParamOperator, "on")
		}
	}
	if searchDate != "" {
		v.Set(things.ParamSearchByDate, "on")
		v.Set(things.ParamDateQuery, searchDate)
		v.Set(things.ParamDateRadio, searchDateMode)
	}
	return v
}

type thingJSON struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Date  string   `json:"date,omitempty"`
	Link  string   `json:"link,omitempty"`
	Tags  []string `json:"tags"`
	Text  string   `json:"text"`
}

func toJSON(list []things.Thing) []thingJSON {
	out := make([]thingJSON, 0, len(list))
	for _, t := range list {
		out = append(out, thingJSON{
			ID:    t.ID,
			Title: t.Title,
			Date:  t.Date.String(),
			Link:  t.Link,
			Tags:  t.Tags,
			Text:  t.Text,
		})
	}
	return out
}

func init() {
	searchCmd.Flags().StringVar(&searchText, "text", "", "Case-insensitive substring of the body")
	searchCmd.Flags().StringVar(&searchTags, "tags", "", "Comma separated tags")
	searchCmd.Flags().BoolVar(&searchMatchAll, "all", false, "Require every tag instead of any")
	searchCmd.Flags().StringVar(&searchDate, "date", "", "Date, or d1,d2 with --mode between")
	searchCmd.Flags().StringVar(&searchDateMode, "mode", string(things.DateOn), "Date mode: on, before, after or between")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(searchCmd)
}
