package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownBasics(t *testing.T) {
	html, err := renderMarkdown("# Day one\n\nWent *north*.")
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>Day one</h1>")
	assert.Contains(t, string(html), "<em>north</em>")
}

func TestRenderMarkdownHighlightsKnownLanguages(t *testing.T) {
	html, err := renderMarkdown("```go\nfunc main() {}\n```\n")
	require.NoError(t, err)
	assert.Contains(t, string(html), "<pre")
	assert.Contains(t, string(html), "style=")
	assert.Contains(t, string(html), "main")
}

func TestRenderMarkdownEscapesUnknownLanguages(t *testing.T) {
	html, err := renderMarkdown("```nosuchlang\n<b>x</b>\n```\n")
	require.NoError(t, err)
	assert.Contains(t, string(html), "&lt;b&gt;x&lt;/b&gt;")
	assert.NotContains(t, string(html), "<b>x</b>")
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	html, err := renderMarkdown("<script>alert(1)</script>\n\ntext")
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
}
