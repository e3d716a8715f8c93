package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed players.toml
var playersTOML []byte

// PlayerDefinition defines how an external program is invoked
type PlayerDefinition struct {
	Description string            `toml:"description"`
	Platforms   []string          `toml:"platforms"`
	Page        *PlayerTypeConfig `toml:"page,omitempty"`
	Image       *PlayerTypeConfig `toml:"image,omitempty"`
}

// PlayerTypeConfig holds the arguments for one link type
type PlayerTypeConfig struct {
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type PlayersConfig struct {
	Players map[string]PlayerDefinition `toml:"players"`
}

type PlayerRegistry struct {
	players map[string]PlayerDefinition
}

// NewPlayerRegistry loads the embedded definitions and merges the user's
// own from the given paths.
func NewPlayerRegistry(userPaths ...string) (*PlayerRegistry, error) {
	var config PlayersConfig
	if err := toml.Unmarshal(playersTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing players.toml: %w", err)
	}
	if config.Players == nil {
		config.Players = make(map[string]PlayerDefinition)
	}

	registry := &PlayerRegistry{players: config.Players}
	for _, p := range userPaths {
		if err := registry.loadFile(p); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return registry, nil
}

// DefaultUserPlayerPaths are the locations checked for user overrides.
func DefaultUserPlayerPaths() []string {
	paths := []string{"./players.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append([]string{filepath.Join(home, ".config", "wkpd", "players.toml")}, paths...)
	}
	return paths
}

func (r *PlayerRegistry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var userConfig PlayersConfig
	if err := toml.Unmarshal(data, &userConfig); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	// User definitions override built-in ones
	for name, def := range userConfig.Players {
		r.players[name] = def
	}
	return nil
}

// GetCommand builds the command for a specific player and link type
func (r *PlayerRegistry) GetCommand(playerName string, t Type, target string) (*exec.Cmd, error) {
	player, exists := r.players[playerName]
	if !exists {
		return exec.Command(playerName, target), nil
	}

	supported := false
	for _, p := range player.Platforms {
		if p == runtime.GOOS {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("%s not supported on %s", playerName, runtime.GOOS)
	}

	var config *PlayerTypeConfig
	switch t {
	case TypePage, TypeUnknown:
		config = player.Page
	case TypeImage:
		config = player.Image
	}
	if config == nil {
		return nil, fmt.Errorf("%s cannot open %s links", playerName, t)
	}

	name := playerName
	if runtime.GOOS == "windows" && playerName == "start" {
		// start is a cmd builtin
		name = "cmd"
	}

	args := append(append([]string{}, r.getArgs(config)...), target)
	return exec.Command(name, args...), nil
}

// getArgs returns the appropriate args for the current platform
func (r *PlayerRegistry) getArgs(config *PlayerTypeConfig) []string {
	switch runtime.GOOS {
	case "darwin":
		if len(config.ArgsDarwin) > 0 {
			return config.ArgsDarwin
		}
	case "linux":
		if len(config.ArgsLinux) > 0 {
			return config.ArgsLinux
		}
	case "windows":
		if len(config.ArgsWindows) > 0 {
			return config.ArgsWindows
		}
	}
	return config.Args
}

// Has reports whether a definition exists for playerName.
func (r *PlayerRegistry) Has(playerName string) bool {
	_, ok := r.players[playerName]
	return ok
}
