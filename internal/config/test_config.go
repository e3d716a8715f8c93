package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	d := defaultConfig()
	return &Config{
		Wiki: WikiConfig{
			Language:          "en",
			DefaultLanguage:   "en",
			SecondaryLanguage: "hi",
			UserAgent:         "wkpd-test/1.0",
			HTTPTimeout:       5 * time.Second,
			SuggestionLimit:   8,
			ThumbnailSize:     80,
			TrendingLimit:     10,
			RelatedLimit:      5,
			Debounce:          300 * time.Millisecond,
		},
		Search:  SearchConfig{Engine: "basic"},
		History: HistoryConfig{Enabled: false, Limit: 50},
		UI:      d.UI,
		Opener:  d.Opener,
		Keys:    d.Keys,
		Log:     LogConfig{Level: "off"},
		Server:  ServerConfig{Addr: "127.0.0.1:0"},
	}
}
