package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal/internal/things"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, Options{
		DSN:         filepath.Join(t.TempDir(), "journal.sqlite"),
		BusyTimeout: 2 * time.Second,
		LockTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, form things.Form) things.Thing {
	t.Helper()
	thing, err := form.Thing()
	require.NoError(t, err)
	created, err := s.Create(context.Background(), thing)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	return created
}

func TestCreateStoresNormalizedTags(t *testing.T) {
	s := openTestStore(t)
	created := mustCreate(t, s, things.Form{Title: "first", Text: "hello", Tags: "a, B , c"})

	got, err := s.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got.Tags)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, "hello", got.Text)
	assert.True(t, got.Date.IsZero())
}

func TestUpdateWithSameTagsIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := mustCreate(t, s, things.Form{Title: "t", Text: "x", Tags: "one, Two", Date: "2021-02-03"})

	before, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		edited := before
		require.NoError(t, things.FormFromThing(before).Apply(&edited))
		require.NoError(t, s.Update(ctx, edited))
	}
	after, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"one", "two"}, after.Tags)
}

func TestUpdateOverwritesFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := mustCreate(t, s, things.Form{Title: "old", Text: "old body", Tags: "a"})

	edited := created
	require.NoError(t, things.Form{Title: "new", Text: "new body", Tags: "X, y", Date: "2022-01-01", Link: "https://example.com"}.Apply(&edited))
	require.NoError(t, s.Update(ctx, edited))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "new body", got.Text)
	assert.Equal(t, "https://example.com", got.Link)
	assert.Equal(t, []string{"x", "y"}, got.Tags)
	assert.Equal(t, "2022-01-01", got.Date.String())
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := mustCreate(t, s, things.Form{Title: "doomed", Tags: "a"})

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err := s.Get(ctx, created.ID)
	require.ErrorIs(t, err, things.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, created.ID), things.ErrNotFound)
}

func TestMissingThingIsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), 404)
	require.ErrorIs(t, err, things.ErrNotFound)
	require.ErrorIs(t, s.Update(context.Background(), things.Thing{ID: 404}), things.ErrNotFound)
}

func TestDuplicateDateIsRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, things.Form{Title: "one", Date: "2020-05-05"})

	dup, err := things.Form{Title: "two", Date: "2020-05-05"}.Thing()
	require.NoError(t, err)
	_, err = s.Create(ctx, dup)
	require.ErrorIs(t, err, things.ErrDateTaken)

	other := mustCreate(t, s, things.Form{Title: "three", Date: "2020-05-06"})
	other.Date = things.NewDate(2020, time.May, 5)
	require.ErrorIs(t, s.Update(ctx, other), things.ErrDateTaken)

	// Undated things never collide.
	mustCreate(t, s, things.Form{Title: "undated"})
	mustCreate(t, s, things.Form{Title: "undated too"})
}

func TestPageIsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	var ids []int64
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, mustCreate(t, s, things.Form{Title: title}).ID)
	}

	first, err := s.Page(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Total)
	assert.Equal(t, 3, first.Pages())
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())
	require.Len(t, first.Items, 2)
	assert.Equal(t, ids[4], first.Items[0].ID)
	assert.Equal(t, ids[3], first.Items[1].ID)

	last, err := s.Page(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, ids[0], last.Items[0].ID)
	assert.False(t, last.HasNext())

	beyond, err := s.Page(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
}

func TestPageFarPastTheEndIsEmpty(t *testing.T) {
	s := openTestStore(t)
	mustCreate(t, s, things.Form{Title: "only"})

	for _, page := range []int{2, math.MaxInt64/10 + 2, math.MaxInt} {
		result, err := s.Page(context.Background(), page, 10)
		require.NoError(t, err)
		assert.Empty(t, result.Items, "page %d", page)
		assert.Equal(t, 1, result.Total)
	}
}

func TestDatesAndTags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, things.Form{Date: "2020-01-10", Tags: "a, b"})
	mustCreate(t, s, things.Form{Date: "2020-01-20", Tags: "a"})
	mustCreate(t, s, things.Form{Date: "2020-02-01", Tags: "c"})

	dates, err := s.Dates(ctx, things.NewDate(2020, time.January, 1), things.NewDate(2020, time.January, 31))
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, "2020-01-10", dates[0].String())
	assert.Equal(t, "2020-01-20", dates[1].String())

	tags, err := s.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{Name: "a", Count: 2}, {Name: "b", Count: 1}, {Name: "c", Count: 1}}, tags)
}

func TestMigrationVersion(t *testing.T) {
	opts := Options{DSN: filepath.Join(t.TempDir(), "m.sqlite")}
	version, _, err := MigrationVersion(opts)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, MigrateUp(opts))
	require.NoError(t, MigrateUp(opts))
	version, dirty, err := MigrationVersion(opts)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, MigrateDown(opts, 0))
	version, _, err = MigrationVersion(opts)
	require.NoError(t, err)
	assert.Zero(t, version)
}
