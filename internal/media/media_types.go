package media

import (
	_ "embed"
	"net/url"
	"path"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed media_types.toml
var mediaTypesTOML []byte

// Type classifies a link for picking the program that opens it.
type Type int

const (
	TypePage Type = iota
	TypeImage
	TypeUnknown
)

func (t Type) String() string {
	switch t {
	case TypePage:
		return "page"
	case TypeImage:
		return "image"
	default:
		return "unknown"
	}
}

type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type TypesConfig struct {
	Page      TypeConfig                `toml:"page"`
	Image     TypeConfig                `toml:"image"`
	Platforms map[string]PlatformConfig `toml:"platforms"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

type TypeDetector struct {
	config *TypesConfig
}

func NewTypeDetector() (*TypeDetector, error) {
	var config TypesConfig
	if err := toml.Unmarshal(mediaTypesTOML, &config); err != nil {
		return nil, err
	}
	return &TypeDetector{config: &config}, nil
}

// DetectType checks the file extension first, then known URL patterns.
func (d *TypeDetector) DetectType(rawURL string) Type {
	lower := strings.ToLower(rawURL)

	var ext string
	if u, err := url.Parse(lower); err == nil {
		ext = strings.TrimPrefix(path.Ext(u.Path), ".")
	}

	if ext != "" {
		if hasExtension(d.config.Image.Extensions, ext) {
			return TypeImage
		}
		if hasExtension(d.config.Page.Extensions, ext) {
			return TypePage
		}
	}

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if matchesPattern(lower, d.config.Image.URLPatterns) {
			return TypeImage
		}
		if matchesPattern(lower, d.config.Page.URLPatterns) {
			return TypePage
		}
	}

	return TypeUnknown
}

func (d *TypeDetector) GetDefaultOpener() string {
	if platformConfig, ok := d.config.Platforms[runtime.GOOS]; ok {
		return platformConfig.DefaultOpener
	}
	if fallback, ok := d.config.Platforms["fallback"]; ok {
		return fallback.DefaultOpener
	}
	return "open"
}

func hasExtension(extensions []string, ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func matchesPattern(u string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(u, pattern) {
			return true
		}
	}
	return false
}
