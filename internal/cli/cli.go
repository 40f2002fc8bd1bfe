package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/museum/pkg/config"
	"github.com/matzehuels/museum/pkg/pipeline"
	"github.com/matzehuels/museum/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "museum"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before the first command runs unless already set.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.Config.OpenCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	if c.Config.Spotify.BaseURL != "" {
		runner.NewSource = pipeline.SpotifySource(c.Config.Spotify.BaseURL)
	}
	return runner, nil
}

// defaultOptions returns pipeline options seeded from the config file.
// Flags are applied on top.
func (c *CLI) defaultOptions() pipeline.Options {
	l := c.Config.Layout
	return pipeline.Options{
		TimeRange:     c.Config.Spotify.TimeRange,
		Width:         l.Width,
		Height:        l.Height,
		Sizes:         l.Sizes,
		MaxRotation:   l.MaxRotation,
		FillerDensity: l.FillerDensity,
		MaxItems:      l.MaxItems,
		Logger:        c.Logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// sessionStore opens the login session store next to the config file
// (~/.config/museum/sessions/).
func sessionStore() (*session.CLIStore, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	return session.NewCLIStore(filepath.Join(filepath.Dir(path), "sessions"))
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
