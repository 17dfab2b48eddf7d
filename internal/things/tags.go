package things

import "strings"

// ParseTags splits a comma separated tag string. Entries are trimmed and
// lower-cased, empty ones dropped; order and duplicates are kept.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func FormatTags(tags []string) string {
	return strings.Join(tags, ", ")
}
