package tui

import (
	"fmt"
	"strings"

	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/markdown"
)

var _ MessageBlock = (*AssistantBlock)(nil)

// AssistantBlock renders streamed assistant text with markdown formatting.
// Finalized paragraphs (separated by double newline) are rendered once and
// cached; only the trailing unfinalized text is re-rendered on each delta.
// Citations, when set, render as a muted list under the text.
type AssistantBlock struct {
	content   strings.Builder
	citations []psalm.Citation
	theme     psalm.Theme
	styles    Styles

	// finalizedRaw is the stable prefix ending at the last double newline.
	// It's rendered once per width and cached in finalizedByWidth.
	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewAssistantBlock creates a new block for streaming assistant text.
func NewAssistantBlock(theme psalm.Theme, styles Styles) *AssistantBlock {
	return &AssistantBlock{
		theme:            theme,
		styles:           styles,
		finalizedByWidth: make(map[int]string),
	}
}

// Append adds a streamed text fragment.
func (b *AssistantBlock) Append(text string) {
	b.content.WriteString(text)
	b.promoteFinalized()
}

// SetCitations attaches source citations, shown below the text.
func (b *AssistantBlock) SetCitations(citations []psalm.Citation) {
	b.citations = citations
}

func (b *AssistantBlock) View(width int) string {
	body := b.viewText(width)
	if len(b.citations) == 0 {
		return body
	}
	var cites strings.Builder
	for _, c := range b.citations {
		line := fmt.Sprintf("[%s] %s", c.ID, c.Snippet)
		cites.WriteString("\n" + b.styles.Citation.Render(line))
	}
	return body + cites.String()
}

func (b *AssistantBlock) viewText(width int) string {
	finalizedRendered := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		// Close fence only for rendering so partial streams display safely.
		trailing += "\n```"
	}
	if trailing == "" {
		return finalizedRendered
	}
	trailingRendered := markdown.Render(trailing, width, b.theme)
	// Whitespace-only trailing input may render to whitespace; treat it the
	// same as empty to avoid spurious blank lines.
	if strings.TrimSpace(trailingRendered) == "" {
		return finalizedRendered
	}
	switch finalizedRendered {
	case "":
		return trailingRendered
	default:
		// Trim whitespace from independently-rendered fragments to avoid a
		// visible seam at the finalization boundary.
		return strings.TrimRight(finalizedRendered, "\n") + "\n\n" + strings.TrimLeft(trailingRendered, "\n")
	}
}

// promoteFinalized scans for the last "\n\n" boundary that doesn't fall
// inside an unclosed fenced code block. Splitting inside a fence would leave
// the finalized fragment with an unclosed opening fence.
func (b *AssistantBlock) promoteFinalized() {
	raw := b.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				// Width-sensitive cache must be invalidated when finalized text grows.
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AssistantBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := markdown.Render(b.finalizedRaw, width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *AssistantBlock) trailingRaw() string {
	raw := b.content.String()
	if b.finalizedRaw == "" {
		return raw
	}
	prefix := b.finalizedRaw + "\n\n"
	return strings.TrimPrefix(raw, prefix)
}

// hasUnclosedFence detects an unclosed fenced code block by checking for an
// odd number of "```" occurrences. Inline code spans containing literal
// triple backticks would miscount, but streamed model output effectively
// never contains those.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
