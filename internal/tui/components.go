package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader returns a view title with an optional muted subtitle, both
// cut to width.
func renderHeader(title, subtitle string, width int) string {
	rows := []string{HeaderStyle.Render(truncateEnd(title, width-2))}
	if subtitle != "" {
		rows = append(rows, renderMuted(truncateEnd(subtitle, width-2)))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded border around an input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

// renderCards lays the related titles out as numbered cards, wrapping onto
// further rows when they do not fit the width.
func renderCards(titles []string, width int) string {
	if len(titles) == 0 {
		return ""
	}

	maxTitle := width/2 - 8
	if maxTitle < 12 {
		maxTitle = 12
	}

	var rows []string
	var row []string
	rowWidth := 0
	for i, title := range titles {
		card := CardStyle.Render(
			CardIndexStyle.Render(fmt.Sprintf("%d", i+1)) + " " + truncateEnd(title, maxTitle),
		)
		w := lipgloss.Width(card)
		if rowWidth > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, card)
		rowWidth += w
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))

	return strings.Join(rows, "\n")
}
