package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
)

type NovelList struct {
	Items         []data.Novel
	SelectedIndex int
	Width         int
	Height        int
	// HasMore shows a hint that another page can be loaded.
	HasMore bool
	Empty   string
}

func NewNovelList() *NovelList {
	return &NovelList{
		Items:  []data.Novel{},
		Width:  80,
		Height: 20,
		Empty:  "No novels found",
	}
}

func (m *NovelList) SetItems(items []data.Novel) {
	m.Items = items
	if m.SelectedIndex >= len(items) && len(items) > 0 {
		m.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		m.SelectedIndex = 0
	}
}

func (m *NovelList) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex++
	if m.SelectedIndex >= len(m.Items) {
		m.SelectedIndex = 0
	}
}

func (m *NovelList) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex--
	if m.SelectedIndex < 0 {
		m.SelectedIndex = len(m.Items) - 1
	}
}

// AtEnd reports whether the cursor is on the last loaded item.
func (m *NovelList) AtEnd() bool {
	return len(m.Items) > 0 && m.SelectedIndex == len(m.Items)-1
}

func (m *NovelList) Selected() *data.Novel {
	if len(m.Items) == 0 || m.SelectedIndex >= len(m.Items) {
		return nil
	}
	return &m.Items[m.SelectedIndex]
}

// visible returns the window of items that fits the height, keeping the
// selection in view. Each card takes about five lines.
func (m *NovelList) visible() (int, int) {
	per := m.Height / 5
	if per < 1 {
		per = 1
	}
	if len(m.Items) <= per {
		return 0, len(m.Items)
	}
	start := m.SelectedIndex - per/2
	if start < 0 {
		start = 0
	}
	end := start + per
	if end > len(m.Items) {
		end = len(m.Items)
		start = end - per
	}
	return start, end
}

func (m *NovelList) View() string {
	if len(m.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render(m.Empty)
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder
	start, end := m.visible()

	for i := start; i < end; i++ {
		novel := m.Items[i]
		cardStyle := styles.CardStyle.Padding(0, 1).MarginBottom(0)
		if i == m.SelectedIndex {
			cardStyle = styles.ActiveCardStyle.Padding(0, 1).MarginBottom(0)
		}

		title := styles.TitleStyle.MarginBottom(0).Render(novel.Title)
		if novel.Author != "" {
			title += styles.MutedStyle.Render(" by " + novel.Author)
		}

		meta := []string{
			styles.StatusStyle(string(novel.Status)).Render(string(novel.Status)),
			styles.MutedStyle.Render(fmt.Sprintf("%d chapters", novel.ChapterCount)),
		}
		if novel.Category != "" {
			meta = append(meta, styles.MutedStyle.Render(novel.Category))
		}

		cardContent := lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			styles.TextStyle.Render(Truncate(novel.Description, m.Width-10)),
			strings.Join(meta, styles.MutedStyle.Render(" • ")),
		)

		b.WriteString(cardStyle.Width(m.Width - 4).Render(cardContent))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%d of %d loaded", m.SelectedIndex+1, len(m.Items))
	if m.HasMore {
		footer += " • n: more"
	}
	b.WriteString(styles.MutedStyle.Render(footer))

	return b.String()
}

// Truncate shortens s to max runes with an ellipsis.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
