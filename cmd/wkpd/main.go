package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/wkpd/internal/config"
	"github.com/pders01/wkpd/internal/debuglog"
	"github.com/pders01/wkpd/internal/session"
	"github.com/pders01/wkpd/internal/storage"
	"github.com/pders01/wkpd/internal/tui"
	"github.com/pders01/wkpd/internal/validation"
	"github.com/pders01/wkpd/internal/wiki"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	logLevel   string
	language   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "wkpd",
	Short: "Wikipedia in your terminal",
	Long: `wkpd searches Wikipedia as you type, reads articles rendered for the
terminal and follows related links. With no subcommand it starts the
interactive reader on a random trending article.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off (overrides config)")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "", "Wikipedia language code, e.g. en or hi (overrides locale)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and starts logging.
// The returned cleanup closes the log file.
func setup() (*config.Config, func(), error) {
	path := configPath
	if path != "" {
		validated, err := validation.NewPermissivePathHandler().ConfigPath(path)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid config path: %w", err)
		}
		path = validated
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if language != "" {
		cfg.Wiki.Language = language
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if cfg.Wiki.APIURL != "" {
		endpoint, err := validation.NewEndpointValidator().ValidateAndNormalize(cfg.Wiki.APIURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid wiki.api_url: %w", err)
		}
		cfg.Wiki.APIURL = endpoint
	}

	level := debuglog.ParseLogLevel(cfg.Log.Level)
	if level != debuglog.LevelOff {
		logPath, err := validation.NewSecurePathHandler().LogPath(cfg.Log.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log path: %w", err)
		}
		if err := debuglog.Setup(level, logPath); err != nil {
			return nil, nil, err
		}
	}

	cleanup := func() {
		_ = debuglog.Close()
	}
	return cfg, cleanup, nil
}

// newClient resolves the site from the config and the locale environment.
func newClient(cfg *config.Config) *wiki.Client {
	site := session.ResolveSite(cfg, os.LookupEnv)
	client := wiki.NewClient(cfg, site)
	debuglog.Infof("using %s", client.Site().Host())
	return client
}

// openHistory opens the visit store, or returns nil when history is off.
func openHistory(cfg *config.Config) (*storage.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path, err := validation.NewSecurePathHandler().HistoryPath(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid history path: %w", err)
	}
	return storage.NewStore(path)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if !quiet {
		tui.ShowBanner(cmd.OutOrStdout(), Version)
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	app := tui.NewApp(newClient(cfg), store, cfg)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
