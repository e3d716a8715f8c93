package media

import (
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/wkpd/internal/config"
)

func TestDetectType(t *testing.T) {
	detector, err := NewTypeDetector()
	require.NoError(t, err)

	tests := []struct {
		name     string
		url      string
		expected Type
	}{
		{name: "article backlink", url: "https://en.wikipedia.org/wiki/Cat", expected: TypePage},
		{name: "escaped title", url: "https://hi.wikipedia.org/wiki/Sea%20otter", expected: TypePage},
		{name: "title with dot", url: "https://en.wikipedia.org/wiki/Mr._Bean", expected: TypePage},
		{name: "mobile site", url: "https://en.m.wikipedia.org/wiki/Cat", expected: TypePage},
		{name: "thumbnail", url: "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a1/Cat.jpg/80px-Cat.jpg", expected: TypeImage},
		{name: "svg thumbnail", url: "https://upload.wikimedia.org/wikipedia/commons/x/Flag.svg", expected: TypeImage},
		{name: "uppercase extension", url: "http://example.com/Photo.PNG", expected: TypeImage},
		{name: "query after extension", url: "http://example.com/photo.webp?width=80", expected: TypeImage},
		{name: "file page", url: "https://en.wikipedia.org/wiki/File:Cat", expected: TypeImage},
		{name: "html page", url: "http://example.com/page.html", expected: TypePage},
		{name: "unknown", url: "http://example.com/resource", expected: TypeUnknown},
		{name: "archive", url: "http://example.com/dump.zip", expected: TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.DetectType(tt.url))
		})
	}
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "page", TypePage.String())
	assert.Equal(t, "image", TypeImage.String())
	assert.Equal(t, "unknown", TypeUnknown.String())
}

func TestGetDefaultOpener(t *testing.T) {
	detector, err := NewTypeDetector()
	require.NoError(t, err)

	switch runtime.GOOS {
	case "darwin":
		assert.Equal(t, "open", detector.GetDefaultOpener())
	case "windows":
		assert.Equal(t, "start", detector.GetDefaultOpener())
	default:
		assert.Equal(t, "xdg-open", detector.GetDefaultOpener())
	}

	empty := &TypeDetector{config: &TypesConfig{}}
	assert.Equal(t, "open", empty.GetDefaultOpener())
}

func fakeLookPath(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return filepath.Join("/usr/bin", name), nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func testOpenerConfig() *config.Config {
	cfg := config.TestConfig()
	programs := config.OpenerPrograms{
		Browser: []string{"firefox", "chromium"},
		Image:   []string{"feh", "eog"},
	}
	cfg.Opener = config.OpenerConfig{
		Darwin:        programs,
		Linux:         programs,
		Windows:       programs,
		DefaultOpener: "fallback-open",
	}
	return cfg
}

func TestLauncher_PicksInstalledPrograms(t *testing.T) {
	l := newLauncher(testOpenerConfig(), fakeLookPath("chromium", "eog"), func(*exec.Cmd) error { return nil })

	assert.Equal(t, "chromium", l.ProgramFor(TypePage))
	assert.Equal(t, "eog", l.ProgramFor(TypeImage))
	assert.Equal(t, "fallback-open", l.ProgramFor(TypeUnknown))
}

func TestLauncher_FallsBackToDefaultOpener(t *testing.T) {
	l := newLauncher(testOpenerConfig(), fakeLookPath(), func(*exec.Cmd) error { return nil })

	assert.Equal(t, "fallback-open", l.ProgramFor(TypePage))
	assert.Equal(t, "fallback-open", l.ProgramFor(TypeImage))
}

func TestLauncher_Open(t *testing.T) {
	var started []*exec.Cmd
	l := newLauncher(testOpenerConfig(), fakeLookPath("unlisted-browser"), func(cmd *exec.Cmd) error {
		started = append(started, cmd)
		return nil
	})
	l.browser = "unlisted-browser"

	require.NoError(t, l.Open("https://en.wikipedia.org/wiki/Cat"))
	require.Len(t, started, 1)
	assert.Equal(t, []string{"unlisted-browser", "https://en.wikipedia.org/wiki/Cat"}, started[0].Args)
}

func TestLauncher_OpenRejectsNonHTTP(t *testing.T) {
	called := false
	l := newLauncher(testOpenerConfig(), fakeLookPath(), func(*exec.Cmd) error {
		called = true
		return nil
	})

	for _, target := range []string{"file:///etc/passwd", "javascript:alert(1)", "/wiki/Cat", ""} {
		assert.Error(t, l.Open(target), "target %q", target)
	}
	assert.False(t, called)
}

func TestLauncher_OpenStartFailure(t *testing.T) {
	l := newLauncher(testOpenerConfig(), fakeLookPath(), func(*exec.Cmd) error {
		return errors.New("boom")
	})

	err := l.Open("https://en.wikipedia.org/wiki/Cat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback-open")
}
