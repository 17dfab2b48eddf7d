package store

import (
	"context"
	"strings"

	"journal/internal/things"
)

// Search returns the things matching every active filter of q, newest first.
func (s *Store) Search(ctx context.Context, q things.Search) ([]things.Thing, error) {
	where, args := s.searchClause(q)
	query := "SELECT " + s.thingColumns() + " FROM things"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id DESC"
	return s.list(ctx, query, args...)
}

func (s *Store) searchClause(q things.Search) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if q.HasText() {
		clauses = append(clauses, s.d.lowerFunc+`(body) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q.Text))+"%")
	}
	if q.HasTags() {
		if q.MatchAll {
			for _, tag := range q.Tags {
				clauses = append(clauses, "EXISTS (SELECT 1 FROM thing_tags tt WHERE tt.thing_id = things.id AND tt.tag = ?)")
				args = append(args, tag)
			}
		} else {
			clauses = append(clauses, "id IN (SELECT thing_id FROM thing_tags WHERE tag IN ("+placeholders(len(q.Tags))+"))")
			for _, tag := range q.Tags {
				args = append(args, tag)
			}
		}
	}
	if q.HasDate() {
		p := s.d.dateParam
		switch q.DateMode {
		case things.DateBefore:
			clauses = append(clauses, "entry_date < "+p)
			args = append(args, q.From.String())
		case things.DateAfter:
			clauses = append(clauses, "entry_date > "+p)
			args = append(args, q.From.String())
		case things.DateBetween:
			clauses = append(clauses, "entry_date >= "+p+" AND entry_date <= "+p)
			args = append(args, q.From.String(), q.To.String())
		default:
			clauses = append(clauses, "entry_date = "+p)
			args = append(args, q.From.String())
		}
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
