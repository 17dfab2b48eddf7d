// Package archive moves things between the store and a directory of
// markdown files with YAML front matter.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"journal/internal/things"
)

const DefaultPattern = "**/*.md"

type Lister interface {
	All(ctx context.Context) ([]things.Thing, error)
}

type Creator interface {
	Create(ctx context.Context, t things.Thing) (things.Thing, error)
}

type ImportResult struct {
	Created int
	// Skipped counts files whose date is already used by another thing.
	Skipped int
}

// Export writes every thing to dir as <id>-<slug>.md and returns the count.
func Export(ctx context.Context, src Lister, dir string) (int, error) {
	list, err := src.All(ctx)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	for _, t := range list {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		data, err := Marshal(t)
		if err != nil {
			return 0, fmt.Errorf("thing %d: %w", t.ID, err)
		}
		path := filepath.Join(dir, FileName(t))
		if err := writeFileAtomic(path, data, 0o644); err != nil {
			return 0, fmt.Errorf("write %s: %w", path, err)
		}
		slog.Debug("exported thing", "id", t.ID, "path", path)
	}
	return len(list), nil
}

// Import creates a thing for every file under dir matching pattern.
func Import(ctx context.Context, dst Creator, dir, pattern string) (ImportResult, error) {
	var result ImportResult
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return result, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return result, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)

	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		data, err := fs.ReadFile(os.DirFS(dir), rel)
		if err != nil {
			return result, fmt.Errorf("read %s: %w", rel, err)
		}
		t, err := Unmarshal(data)
		if err != nil {
			return result, fmt.Errorf("%s: %w", rel, err)
		}
		t.ID = 0
		if _, err := dst.Create(ctx, t); err != nil {
			if errors.Is(err, things.ErrDateTaken) {
				slog.Warn("skip import, date taken", "path", rel, "date", t.Date.String())
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("%s: %w", rel, err)
		}
		result.Created++
	}
	return result, nil
}

func FileName(t things.Thing) string {
	return fmt.Sprintf("%d-%s.md", t.ID, slugify(t.Title))
}

func slugify(input string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(input) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "entry"
	}
	return slug
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
