package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"

	"github.com/handiism/khinsider-downloader/internal/config"
	"github.com/handiism/khinsider-downloader/internal/download"
	"github.com/handiism/khinsider-downloader/internal/logging"
)

type args struct {
	URLs           []string `arg:"positional" help:"album page URLs, or listing pages with --follow-listings"`
	Config         string   `arg:"-c,--config" help:"settings file (.json or .toml)"`
	Output         string   `arg:"-o,--output" help:"download folder template, e.g. ~/Music/{album}"`
	Format         string   `arg:"-f,--format" help:"flac or mp3"`
	BaseURL        *string  `arg:"--base-url" help:"download base URL; empty derives it from each track's host"`
	Cutoff         *float64 `arg:"--cutoff" help:"minimum similarity for fuzzy name matches, 0 to 1"`
	FollowListings bool     `arg:"-l,--follow-listings" help:"download every album linked from non-album pages"`
	Playlist       bool     `arg:"-p,--playlist" help:"create a playlist per album"`
	DryRun         bool     `arg:"-n,--dry-run" help:"resolve albums and print the download plan without downloading"`
	LogLevel       string   `arg:"--log-level" help:"debug, info, warn or error"`
	LogFormat      string   `arg:"--log-format" help:"console or json"`
	Verbose        bool     `arg:"-v,--verbose" help:"shorthand for --log-level debug"`
	NoProgress     bool     `arg:"--no-progress" help:"disable the progress bar"`
}

func (args) Description() string {
	return "khinsider-dl downloads video game soundtracks from KHInsider album pages.\n" +
		"For interactive mode, use: khinsider-tui"
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if len(a.URLs) == 0 {
		p.Fail("at least one URL is required")
	}
	os.Exit(run(a))
}

func run(a args) int {
	settings, err := loadSettings(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{Level: settings.LogLevel, Format: settings.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := download.NewManager(settings, logger, progressLogger(logger))
	logger.Info("starting", "session", manager.Session(), "urls", len(a.URLs), "format", settings.Format)

	if err := manager.Initialize(ctx, strings.Join(a.URLs, "\n")); err != nil {
		logger.Error("could not load albums", "error", err)
		return 1
	}

	if a.DryRun {
		fmt.Println(renderPlan(manager.Albums(), manager.FileSize))
		return 0
	}

	var bar *progressReporter
	if !a.NoProgress && isTerminal(os.Stderr) {
		bar = startProgress(manager)
	}
	err = manager.StartDownloads(ctx)
	if bar != nil {
		bar.stop()
	}

	stats := manager.Stats()
	logger.Info("finished",
		"albums", stats.Albums,
		"downloaded", stats.Downloaded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"unmatched", stats.Unmatched,
		"size", humanize.Bytes(uint64(stats.Bytes)),
	)

	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		logger.Warn("download cancelled")
		return 130
	case err != nil:
		logger.Error("download failed", "error", err)
		return 1
	case stats.Failed > 0:
		return 2
	}
	return 0
}

// loadSettings reads the settings file, if any, and applies the flags.
func loadSettings(a args) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if a.Config != "" {
		var err error
		if settings, err = config.Load(a.Config); err != nil {
			return nil, err
		}
	}

	if a.Output != "" {
		settings.DownloadsPath = a.Output
	}
	if a.Format != "" {
		settings.Format = strings.ToLower(a.Format)
	}
	if a.BaseURL != nil {
		settings.BaseURL = *a.BaseURL
	}
	if a.Cutoff != nil {
		settings.FuzzyCutoff = *a.Cutoff
	}
	if a.FollowListings {
		settings.FollowListingPages = true
	}
	if a.Playlist {
		settings.CreatePlaylist = true
	}
	if a.LogLevel != "" {
		settings.LogLevel = a.LogLevel
	}
	if a.Verbose {
		settings.LogLevel = "debug"
	}
	if a.LogFormat != "" {
		settings.LogFormat = a.LogFormat
	}

	return settings, settings.Validate()
}

// progressLogger forwards manager progress events to the logger.
func progressLogger(logger *slog.Logger) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelError:
			logger.Error(event.Message)
		case download.LevelWarning:
			logger.Warn(event.Message)
		case download.LevelVerbose:
			logger.Debug(event.Message)
		default:
			logger.Info(event.Message)
		}
	}
}
