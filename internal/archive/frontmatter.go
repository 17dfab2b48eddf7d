package archive

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"journal/internal/things"
)

const delimiter = "---"

var ErrNoFrontMatter = errors.New("missing front matter")

type frontMatter struct {
	ID    int64   `yaml:"id,omitempty"`
	Title string  `yaml:"title"`
	Date  string  `yaml:"date,omitempty"`
	Link  string  `yaml:"link,omitempty"`
	Tags  tagList `yaml:"tags,omitempty,flow"`
}

// tagList accepts either a YAML sequence or a comma separated string.
type tagList []string

func (l *tagList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = things.ParseTags(node.Value)
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*l = things.ParseTags(strings.Join(raw, ","))
		return nil
	}
	return fmt.Errorf("tags: unexpected yaml node at line %d", node.Line)
}

// Marshal renders t as a markdown document with YAML front matter.
func Marshal(t things.Thing) ([]byte, error) {
	fm := frontMatter{
		ID:    t.ID,
		Title: t.Title,
		Link:  t.Link,
		Tags:  tagList(t.Tags),
	}
	if !t.Date.IsZero() {
		fm.Date = t.Date.String()
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(t.Text)
	if t.Text != "" && !strings.HasSuffix(t.Text, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a document written by Marshal. The id is returned but
// callers creating records ignore it.
func Unmarshal(data []byte) (things.Thing, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, []byte(delimiter+"\n")) {
		return things.Thing{}, ErrNoFrontMatter
	}
	rest := data[len(delimiter)+1:]
	var header, body []byte
	switch {
	case bytes.HasPrefix(rest, []byte(delimiter+"\n")):
		body = rest[len(delimiter)+1:]
	default:
		end := bytes.Index(rest, []byte("\n"+delimiter+"\n"))
		if end < 0 {
			if !bytes.HasSuffix(rest, []byte("\n"+delimiter)) {
				return things.Thing{}, fmt.Errorf("%w: no closing delimiter", ErrNoFrontMatter)
			}
			end = len(rest) - len(delimiter) - 1
			header = rest[:end]
		} else {
			header = rest[:end]
			body = rest[end+len(delimiter)+2:]
		}
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return things.Thing{}, fmt.Errorf("parse front matter: %w", err)
	}
	date, err := things.ParseDate(fm.Date)
	if err != nil {
		return things.Thing{}, err
	}
	tags := []string(fm.Tags)
	if tags == nil {
		tags = []string{}
	}
	return things.Thing{
		ID:    fm.ID,
		Title: fm.Title,
		Text:  strings.TrimPrefix(string(body), "\n"),
		Link:  fm.Link,
		Tags:  tags,
		Date:  date,
	}, nil
}
