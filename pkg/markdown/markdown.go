package markdown

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// renderer is configured once; goldmark.Markdown is safe for concurrent use.
var renderer = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
	),
)

// Render converts Markdown source to HTML. A document that fails to render
// (which goldmark only does on writer errors) yields an empty string rather
// than failing the mutation that carries it.
func Render(source string) string {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// WordCount returns the number of whitespace-delimited tokens in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Slugify derives a URL-safe slug from a title: lowercase, runs of
// non-alphanumeric characters collapsed to a single '-', leading and
// trailing dashes trimmed. The result may be empty for titles with no
// alphanumeric characters; callers fall back to a random suffix.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
