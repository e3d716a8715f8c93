package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Wiki    WikiConfig    `mapstructure:"wiki"`
	Search  SearchConfig  `mapstructure:"search"`
	History HistoryConfig `mapstructure:"history"`
	UI      UIConfig      `mapstructure:"ui"`
	Opener  OpenerConfig  `mapstructure:"opener"`
	Keys    KeyConfig     `mapstructure:"keys"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
}

type WikiConfig struct {
	// Language pins the site code. Empty means resolve from the locale.
	Language          string        `mapstructure:"language"`
	DefaultLanguage   string        `mapstructure:"default_language"`
	SecondaryLanguage string        `mapstructure:"secondary_language"`
	APIURL            string        `mapstructure:"api_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	SuggestionLimit   int           `mapstructure:"suggestion_limit"`
	ThumbnailSize     int           `mapstructure:"thumbnail_size"`
	TrendingLimit     int           `mapstructure:"trending_limit"`
	RelatedLimit      int           `mapstructure:"related_limit"`
	Debounce          time.Duration `mapstructure:"debounce"`
}

type SearchConfig struct {
	Engine string `mapstructure:"engine"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Limit   int    `mapstructure:"limit"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type ArticleConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

// OpenerConfig lists candidate programs per platform for links and
// images opened outside the terminal. The first installed one wins.
type OpenerConfig struct {
	Darwin        OpenerPrograms `mapstructure:"darwin"`
	Linux         OpenerPrograms `mapstructure:"linux"`
	Windows       OpenerPrograms `mapstructure:"windows"`
	DefaultOpener string         `mapstructure:"default_opener"`
}

type OpenerPrograms struct {
	Browser []string `mapstructure:"browser"`
	Image   []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string `mapstructure:"modifier"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Wiki: WikiConfig{
			DefaultLanguage:   "en",
			SecondaryLanguage: "hi",
			UserAgent:         "wkpd/1.0 (https://github.com/pders01/wkpd)",
			HTTPTimeout:       30 * time.Second,
			SuggestionLimit:   8,
			ThumbnailSize:     80,
			TrendingLimit:     10,
			RelatedLimit:      5,
			Debounce:          300 * time.Millisecond,
		},
		Search: SearchConfig{
			Engine: "bleve",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(homeDir, ".wkpd", "history.db"),
			Limit:   50,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Article: ArticleConfig{
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
		},
		Opener: OpenerConfig{
			Darwin: OpenerPrograms{
				Browser: []string{"open"},
				Image:   []string{"preview", "open"},
			},
			Linux: OpenerPrograms{
				Browser: []string{"xdg-open", "firefox", "chromium"},
				Image:   []string{"sxiv", "feh", "eog", "xdg-open"},
			},
			Windows: OpenerPrograms{
				Browser: []string{"start"},
				Image:   []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
		},
		Log: LogConfig{
			Level: "off",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

// Load reads configuration from configPath, or from the default search
// locations when configPath is empty. A .env file in the working directory
// is loaded first so WKPD_* variables can live there.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("wiki", cfg.Wiki)
	v.SetDefault("search", cfg.Search)
	v.SetDefault("history", cfg.History)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("opener", cfg.Opener)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("log", cfg.Log)
	v.SetDefault("server", cfg.Server)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "wkpd")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WKPD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Decode over the defaults so partially written tables keep their
	// unspecified keys.
	config := *cfg
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.History.Path = expandPath(cfg.History.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings keep the TOML readable
	wikiCfg := map[string]interface{}{
		"language":           config.Wiki.Language,
		"default_language":   config.Wiki.DefaultLanguage,
		"secondary_language": config.Wiki.SecondaryLanguage,
		"api_url":            config.Wiki.APIURL,
		"user_agent":         config.Wiki.UserAgent,
		"http_timeout":       config.Wiki.HTTPTimeout.String(),
		"suggestion_limit":   config.Wiki.SuggestionLimit,
		"thumbnail_size":     config.Wiki.ThumbnailSize,
		"trending_limit":     config.Wiki.TrendingLimit,
		"related_limit":      config.Wiki.RelatedLimit,
		"debounce":           config.Wiki.Debounce.String(),
	}

	v.Set("wiki", wikiCfg)
	v.Set("search", config.Search)
	v.Set("history", config.History)
	v.Set("ui", config.UI)
	v.Set("opener", config.Opener)
	v.Set("keys", config.Keys)
	v.Set("log", config.Log)
	v.Set("server", config.Server)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
