package media

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/pders01/wkpd/internal/config"
	"github.com/pders01/wkpd/internal/debuglog"
)

// Launcher opens article links in the browser and thumbnails in an image
// viewer.
type Launcher struct {
	browser       string
	imageViewer   string
	defaultOpener string
	registry      *PlayerRegistry
	detector      *TypeDetector
	lookPath      func(string) (string, error)
	start         func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	return newLauncher(cfg, exec.LookPath, startDetached)
}

func newLauncher(cfg *config.Config, lookPath func(string) (string, error), start func(*exec.Cmd) error) *Launcher {
	registry, err := NewPlayerRegistry(DefaultUserPlayerPaths()...)
	if err != nil {
		debuglog.Warnf("loading player definitions: %v", err)
		registry = &PlayerRegistry{players: make(map[string]PlayerDefinition)}
	}

	detector, err := NewTypeDetector()
	if err != nil {
		detector = &TypeDetector{config: &TypesConfig{}}
	}

	defaultOpener := cfg.Opener.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.GetDefaultOpener()
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		registry:      registry,
		detector:      detector,
		lookPath:      lookPath,
		start:         start,
	}

	var programs config.OpenerPrograms
	switch runtime.GOOS {
	case "darwin":
		programs = cfg.Opener.Darwin
	case "windows":
		programs = cfg.Opener.Windows
	default:
		programs = cfg.Opener.Linux
	}

	l.browser = l.findCommand(programs.Browser...)
	l.imageViewer = l.findCommand(programs.Image...)
	if l.browser == "" {
		l.browser = l.defaultOpener
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}
	return l
}

// Open hands target to the program configured for its type. Only http and
// https links are accepted.
func (l *Launcher) Open(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", target)
	}

	t := l.detector.DetectType(target)
	program := l.ProgramFor(t)
	if program == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd, err := l.registry.GetCommand(program, t, target)
	if err != nil {
		cmd = exec.Command(program, target)
	}

	debuglog.WithFields(map[string]interface{}{
		"program": program,
		"type":    t.String(),
	}).Infof("opening %s", target)

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", program, err)
	}
	return nil
}

// ProgramFor reports which program handles links of type t.
func (l *Launcher) ProgramFor(t Type) string {
	switch t {
	case TypeImage:
		return l.imageViewer
	case TypePage:
		return l.browser
	default:
		return l.defaultOpener
	}
}

func (l *Launcher) findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := l.lookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}

// startDetached starts GUI applications without waiting on them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
