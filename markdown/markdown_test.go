package markdown_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/markdown"
	"github.com/stretchr/testify/assert"
)

func stripANSI(s string) string {
	re := regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	return re.ReplaceAllString(s, "")
}

func TestMain(m *testing.M) {
	// Force ANSI color output so styled elements (headings, links,
	// quotes) produce visible escape codes we can assert against.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender(t *testing.T) {
	t.Parallel()

	theme := psalm.DefaultTheme()

	t.Run("empty input returns empty string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", markdown.Render("", 80, theme))
	})

	t.Run("plain paragraph", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("hello world", 80, theme)
		assert.Contains(t, stripANSI(result), "hello world")
	})

	t.Run("heading renders content with distinct styling", func(t *testing.T) {
		t.Parallel()
		heading := markdown.Render("# Analysis", 80, theme)
		paragraph := markdown.Render("Analysis", 80, theme)
		assert.Contains(t, stripANSI(heading), "Analysis")
		assert.NotEqual(t, heading, paragraph)
	})

	t.Run("bold and italic text", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("**must** be *reviewed*", 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "must")
		assert.Contains(t, stripped, "reviewed")
	})

	t.Run("blockquote renders with gutter", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("> The additional terms are to be construed as proposals.", 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "┃")
		assert.Contains(t, stripped, "additional terms")
	})

	t.Run("blockquote styled distinctly from paragraph", func(t *testing.T) {
		t.Parallel()
		quote := markdown.Render("> same words", 80, theme)
		para := markdown.Render("same words", 80, theme)
		assert.NotEqual(t, quote, para)
	})

	t.Run("fenced code block preserves content without reflow", func(t *testing.T) {
		t.Parallel()
		src := "```\nSection 2-207(1) of the Uniform Commercial Code\n```"
		result := markdown.Render(src, 20, theme)
		assert.Contains(t, stripANSI(result), "Section 2-207(1) of the Uniform Commercial Code")
	})

	t.Run("fenced code block shows language label", func(t *testing.T) {
		t.Parallel()
		src := "```text\nverbatim clause\n```"
		result := markdown.Render(src, 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "text")
		assert.Contains(t, stripped, "verbatim clause")
	})

	t.Run("bullet list", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("- indemnification\n- liability cap\n- governing law", 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "- indemnification")
		assert.Contains(t, stripped, "- liability cap")
		assert.Contains(t, stripped, "- governing law")
	})

	t.Run("ordered list keeps numbering", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("1. first\n2. second", 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "1. first")
		assert.Contains(t, stripped, "2. second")
	})

	t.Run("nested list indents", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("- outer\n  - inner", 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "- outer")
		assert.Contains(t, stripped, "  - inner")
	})

	t.Run("link shows text and URL", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("[case law](https://example.com/smith-v-jones)", 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "case law")
		assert.Contains(t, stripped, "example.com/smith-v-jones")
	})

	t.Run("paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		long := "word1 word2 word3 word4 word5 word6 word7 word8 word9 word10 word11 word12"
		result := markdown.Render(long, 30, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "word1")
		assert.Contains(t, stripped, "word12")
		assert.Greater(t, len(strings.Split(result, "\n")), 1)
	})

	t.Run("zero width falls back to default", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("hello", 0, theme)
		assert.Contains(t, stripANSI(result), "hello")
	})

	t.Run("no trailing newline", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("para one\n\npara two", 80, theme)
		assert.False(t, strings.HasSuffix(result, "\n"))
	})
}
