package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/wkpd/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestShowBanner(t *testing.T) {
	var buf bytes.Buffer
	ShowBanner(&buf, "1.0.0-test")
	out := buf.String()

	assert.Contains(t, out, "Wikipedia in your terminal")
	assert.Contains(t, out, "╔")
	assert.Contains(t, out, "╝")
	assert.Contains(t, out, "◆")
	assert.Contains(t, out, "v1.0.0-test")
}

func TestShowBanner_DevVersion(t *testing.T) {
	var buf bytes.Buffer
	ShowBanner(&buf, "dev")
	assert.NotContains(t, buf.String(), "vdev")
}

func TestGetCompactBanner(t *testing.T) {
	result := GetCompactBanner("Test message")
	assert.Contains(t, result, "Test message")
	assert.Contains(t, result, "███ ███")
}

func TestGetWelcomeMessage(t *testing.T) {
	result := GetWelcomeMessage("ctrl+")
	assert.Contains(t, result, "Press ctrl+s to search Wikipedia")
}

func TestLogoConstants(t *testing.T) {
	assert.Len(t, LogoLines, 5)
	assert.Len(t, BannerColors, 5)
	for _, line := range LogoLines {
		assert.False(t, strings.TrimSpace(line) == "")
	}
}

func TestApplyTheme(t *testing.T) {
	saved := []lipgloss.Color{PrimaryColor, MutedColor, ErrorColor}
	t.Cleanup(func() {
		PrimaryColor, MutedColor, ErrorColor = saved[0], saved[1], saved[2]
		buildStyles()
	})

	ApplyTheme(config.UIColors{Primary: "#000001", Error: "#000002"})
	assert.Equal(t, lipgloss.Color("#000001"), PrimaryColor)
	assert.Equal(t, lipgloss.Color("#000002"), ErrorColor)
	assert.Equal(t, saved[1], MutedColor)
}
