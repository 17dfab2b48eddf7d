package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal/internal/things"
)

type memStore struct {
	items []things.Thing
	dates map[string]bool
}

func (m *memStore) All(context.Context) ([]things.Thing, error) {
	return m.items, nil
}

func (m *memStore) Create(_ context.Context, t things.Thing) (things.Thing, error) {
	if m.dates == nil {
		m.dates = make(map[string]bool)
	}
	if !t.Date.IsZero() {
		if m.dates[t.Date.String()] {
			return things.Thing{}, things.ErrDateTaken
		}
		m.dates[t.Date.String()] = true
	}
	t.ID = int64(len(m.items) + 1)
	m.items = append(m.items, t)
	return t, nil
}

func mustDate(t *testing.T, raw string) things.Date {
	t.Helper()
	d, err := things.ParseDate(raw)
	require.NoError(t, err)
	return d
}

func TestMarshalUnmarshalKeepsFields(t *testing.T) {
	in := things.Thing{
		ID:    7,
		Title: "Trip: north",
		Text:  "# Day one\n\nwalked\n",
		Link:  "https://example.com",
		Tags:  []string{"travel", "go"},
		Date:  mustDate(t, "2020-03-10"),
	}
	data, err := Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tags: [travel, go]")

	out, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.Text, out.Text)
	assert.Equal(t, in.Link, out.Link)
	assert.Equal(t, in.Tags, out.Tags)
	assert.True(t, in.Date.Equal(out.Date))
}

func TestLeadingBlankLinesSurviveRoundTrip(t *testing.T) {
	in := things.Thing{Title: "spaced", Text: "\n\n    indented code\n", Tags: []string{}}
	data, err := Marshal(in)
	require.NoError(t, err)
	out, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, in.Text, out.Text)
}

func TestUnmarshalNormalizesHandWrittenFiles(t *testing.T) {
	doc := "---\r\ntitle: Notes\r\ndate: 2021-05-01\r\ntags: A, b ,C\r\n---\r\nbody text\r\n"
	got, err := Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Notes", got.Title)
	assert.Equal(t, "2021-05-01", got.Date.String())
	assert.Equal(t, []string{"a", "b", "c"}, got.Tags)
	assert.Equal(t, "body text\n", got.Text)
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte("just text"))
	assert.ErrorIs(t, err, ErrNoFrontMatter)

	_, err = Unmarshal([]byte("---\ntitle: x\n"))
	assert.ErrorIs(t, err, ErrNoFrontMatter)

	_, err = Unmarshal([]byte("---\ndate: yesterday\n---\n"))
	assert.ErrorIs(t, err, things.ErrInvalidDate)
}

func TestExportThenImport(t *testing.T) {
	src := &memStore{}
	_, _ = src.Create(context.Background(), things.Thing{Title: "First entry", Text: "one", Tags: []string{"a"}, Date: mustDate(t, "2020-01-01")})
	_, _ = src.Create(context.Background(), things.Thing{Title: "", Text: "two", Tags: []string{}})

	dir := t.TempDir()
	n, err := Export(context.Background(), src, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dir, "1-first-entry.md"))
	assert.FileExists(t, filepath.Join(dir, "2-entry.md"))

	dst := &memStore{}
	res, err := Import(context.Background(), dst, dir, "")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2}, res)
	require.Len(t, dst.items, 2)
	assert.Equal(t, "First entry", dst.items[0].Title)
	assert.Equal(t, []string{"a"}, dst.items[0].Tags)

	res, err = Import(context.Background(), dst, dir, "1-*.md")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 1}, res)
}

func TestImportWalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2020", "03"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2020", "03", "a.md"), []byte("---\ntitle: nested\n---\nx\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("not markdown"), 0o644))

	dst := &memStore{}
	res, err := Import(context.Background(), dst, dir, DefaultPattern)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, "nested", dst.items[0].Title)

	_, err = Import(context.Background(), dst, dir, "[")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("Hello, World!"))
	assert.Equal(t, "entry", slugify("???"))
}
