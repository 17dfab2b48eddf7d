package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"journal/internal/things"
)

type PageResult struct {
	Items   []things.Thing
	Page    int
	PerPage int
	Total   int
}

func (p PageResult) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p PageResult) HasPrev() bool { return p.Page > 1 }
func (p PageResult) HasNext() bool { return p.Page < p.Pages() }
func (p PageResult) PrevPage() int { return p.Page - 1 }
func (p PageResult) NextPage() int { return p.Page + 1 }

type TagCount struct {
	Name  string
	Count int
}

func (s *Store) thingColumns() string {
	return "id, title, body, link, " + s.d.dateSelect
}

func scanThing(row rowScanner) (things.Thing, error) {
	var (
		t    things.Thing
		date sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Text, &t.Link, &date); err != nil {
		return things.Thing{}, err
	}
	if date.Valid {
		d, err := things.ParseDate(date.String)
		if err != nil {
			return things.Thing{}, fmt.Errorf("thing %d: %w", t.ID, err)
		}
		t.Date = d
	}
	return t, nil
}

func dateArg(d things.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func (s *Store) Create(ctx context.Context, t things.Thing) (things.Thing, error) {
	err := s.inTx(ctx, "create", func(tx *txn) error {
		var id int64
		err := tx.queryRow(ctx,
			"INSERT INTO things(title, body, link, entry_date) VALUES(?, ?, ?, "+s.d.dateParam+") RETURNING id",
			t.Title, t.Text, t.Link, dateArg(t.Date),
		).Scan(&id)
		if err != nil {
			return mapWriteErr(err)
		}
		t.ID = id
		return writeTags(ctx, tx, id, t.Tags)
	})
	if err != nil {
		return things.Thing{}, err
	}
	return t, nil
}

func (s *Store) Get(ctx context.Context, id int64) (things.Thing, error) {
	t, err := scanThing(s.queryRow(ctx, "SELECT "+s.thingColumns()+" FROM things WHERE id=?", id))
	if isNoRows(err) {
		return things.Thing{}, fmt.Errorf("%w: %d", things.ErrNotFound, id)
	}
	if err != nil {
		return things.Thing{}, err
	}
	list := []things.Thing{t}
	if err := s.loadTags(ctx, list); err != nil {
		return things.Thing{}, err
	}
	return list[0], nil
}

func (s *Store) Update(ctx context.Context, t things.Thing) error {
	return s.inTx(ctx, "update", func(tx *txn) error {
		res, err := tx.exec(ctx,
			"UPDATE things SET title=?, body=?, link=?, entry_date="+s.d.dateParam+" WHERE id=?",
			t.Title, t.Text, t.Link, dateArg(t.Date), t.ID,
		)
		if err != nil {
			return mapWriteErr(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %d", things.ErrNotFound, t.ID)
		}
		return writeTags(ctx, tx, t.ID, t.Tags)
	})
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.inTx(ctx, "delete", func(tx *txn) error {
		if _, err := tx.exec(ctx, "DELETE FROM thing_tags WHERE thing_id=?", id); err != nil {
			return err
		}
		res, err := tx.exec(ctx, "DELETE FROM things WHERE id=?", id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %d", things.ErrNotFound, id)
		}
		return nil
	})
}

// Page lists things newest first. Pages are 1-based.
func (s *Store) Page(ctx context.Context, page, perPage int) (PageResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	result := PageResult{Page: page, PerPage: perPage}
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM things").Scan(&result.Total); err != nil {
		return PageResult{}, err
	}
	if page > result.Pages() {
		result.Items = []things.Thing{}
		return result, nil
	}
	items, err := s.list(ctx,
		"SELECT "+s.thingColumns()+" FROM things ORDER BY id DESC LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage,
	)
	if err != nil {
		return PageResult{}, err
	}
	result.Items = items
	return result, nil
}

// All returns every thing in creation order.
func (s *Store) All(ctx context.Context) ([]things.Thing, error) {
	return s.list(ctx, "SELECT "+s.thingColumns()+" FROM things ORDER BY id")
}

// Dates returns the dates in [from, to] that have a thing.
func (s *Store) Dates(ctx context.Context, from, to things.Date) ([]things.Date, error) {
	rows, err := s.query(ctx,
		"SELECT "+s.d.dateSelect+" FROM things WHERE entry_date >= "+s.d.dateParam+" AND entry_date <= "+s.d.dateParam+" ORDER BY entry_date",
		from.String(), to.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []things.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := things.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *Store) Tags(ctx context.Context) ([]TagCount, error) {
	rows, err := s.query(ctx, `
		SELECT tag, COUNT(DISTINCT thing_id) AS n
		FROM thing_tags
		GROUP BY tag
		ORDER BY n DESC, tag
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, err
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]things.Thing, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []things.Thing
	for rows.Next() {
		t, err := scanThing(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) loadTags(ctx context.Context, list []things.Thing) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[int64]int, len(list))
	args := make([]any, 0, len(list))
	for i := range list {
		list[i].Tags = []string{}
		byID[list[i].ID] = i
		args = append(args, list[i].ID)
	}
	rows, err := s.query(ctx,
		"SELECT thing_id, tag FROM thing_tags WHERE thing_id IN ("+placeholders(len(args))+") ORDER BY thing_id, seq",
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id  int64
			tag string
		)
		if err := rows.Scan(&id, &tag); err != nil {
			return err
		}
		if i, ok := byID[id]; ok {
			list[i].Tags = append(list[i].Tags, tag)
		}
	}
	return rows.Err()
}

func writeTags(ctx context.Context, tx *txn, id int64, tags []string) error {
	if _, err := tx.exec(ctx, "DELETE FROM thing_tags WHERE thing_id=?", id); err != nil {
		return err
	}
	for i, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, err := tx.exec(ctx, "INSERT INTO thing_tags(thing_id, seq, tag) VALUES(?, ?, ?)", id, i, tag); err != nil {
			return err
		}
	}
	return nil
}

func mapWriteErr(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", things.ErrDateTaken, err)
	}
	return err
}
