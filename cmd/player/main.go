// Package main provides the player entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/buttonbox/internal/app/filter"
	appinput "github.com/osa030/buttonbox/internal/app/input"
	"github.com/osa030/buttonbox/internal/app/notification"
	"github.com/osa030/buttonbox/internal/app/player"
	"github.com/osa030/buttonbox/internal/domain/track"
	"github.com/osa030/buttonbox/internal/infra/audio"
	"github.com/osa030/buttonbox/internal/infra/config"
	"github.com/osa030/buttonbox/internal/infra/display"
	"github.com/osa030/buttonbox/internal/infra/input"
	"github.com/osa030/buttonbox/internal/infra/logger"
	"github.com/osa030/buttonbox/internal/infra/storage"
)

var (
	app        = kingpin.New("buttonbox", "Three-button music player")
	configPath = app.Flag("config", "Path to config file").Default("config/player.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	libraryDir = app.Flag("dir", "Music directory (overrides config)").String()

	// list command
	listCmd = app.Command("list", "Print the playlist and exit")
	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func init() {
	// run command (default) - no need to store the command
	app.Command("run", "Run the player (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-filters command
	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// Initialize logger
	loggerConfig := newLoggerConfig()
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}
	if *libraryDir != "" {
		cfg.Library.Dir = *libraryDir
	}

	if command == listCmd.FullCommand() {
		if err := list(cfg); err != nil {
			zlog.Error().Msgf("List error: %v", err)
			os.Exit(1)
		}
		return
	}

	// Run player (defer ensures the hooks and cleanup run)
	if err := run(cfg, loggerConfig); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// newLoggerConfig builds the logger configuration from the command-line flags.
func newLoggerConfig() logger.Config {
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
		File:   "",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	return loggerConfig
}

// run executes the main player logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config, loggerConfig logger.Config) error {
	chain, err := newFilterChain(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	// Create decode engine
	sink, err := audio.NewSink(cfg.Audio.Output.Type, cfg.Audio.SampleRate, cfg.Audio.Output.Settings)
	if err != nil {
		return errors.Wrap(err, "failed to create audio output")
	}
	engine := audio.NewEngine(audio.Config{
		ChunkSize:       cfg.Audio.ChunkSize,
		ResampleQuality: cfg.Audio.ResampleQuality,
	}, sink)
	defer func() {
		if err := engine.Close(); err != nil {
			zlog.Error().Msgf("Failed to close audio engine: %v", err)
		}
	}()

	// Create presenters
	notifier := notification.NewManager()
	defer notifier.Close()
	for _, pc := range cfg.Display.Presenters {
		p, err := display.New(pc.Type, pc.Settings, os.Stdout)
		if err != nil {
			return errors.Wrapf(err, "failed to create presenter %s", pc.Type)
		}
		notifier.Subscribe(p)
	}

	// Create input source
	source, err := newSource(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create input source")
	}
	defer func() {
		if err := source.Close(); err != nil {
			zlog.Error().Msgf("Failed to close input source: %v", err)
		}
	}()
	if cfg.Input.Type == input.TypeKeyboard {
		// The keyboard source puts the terminal into raw mode.
		loggerConfig.RawTerminal = true
		if err := logger.Init(loggerConfig); err != nil {
			return errors.Wrap(err, "failed to reinitialize logger")
		}
		fmt.Print("Controls: p=prev space=play n=next q=quit\r\n")
	}

	// Watch the library directory
	var changes <-chan struct{}
	if cfg.Library.Watch {
		watcher, err := storage.NewWatcher(cfg.Library.Dir, cfg.WatchSettle())
		if err != nil {
			zlog.Warn().Msgf("Library watch disabled: %v", err)
		} else {
			defer watcher.Close()
			changes = watcher.Changes()
		}
	}

	mgr, err := player.NewManager(player.Config{
		LibraryDir:     cfg.Library.Dir,
		Capacity:       cfg.Library.Capacity,
		Tick:           cfg.Tick(),
		DebounceWindow: cfg.DebounceWindow(),
	}, player.Deps{
		Lister:    storage.NewDirLister(),
		Chain:     chain,
		Engine:    engine,
		Presenter: notifier,
		Source:    source,
		Changes:   changes,
		Quit:      source.Done(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create player")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wait for shutdown signal; SIGHUP requests a rescan
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					mgr.RequestRescan()
					continue
				}
				zlog.Info().Msg("Received shutdown signal...")
				cancel()
				return
			case <-mgr.Done():
				return
			}
		}
	}()

	executeHooks(cfg.Hooks.OnStarted, "on_started")
	err = mgr.Run(ctx)
	zlog.Info().Msg("Player stopped")
	executeHooks(cfg.Hooks.OnStopped, "on_stopped")

	return err
}

// newFilterChain builds the entry filter chain from the config.
func newFilterChain(cfg *config.Config) (*filter.Chain, error) {
	filters := make(map[string]filter.Config, len(cfg.Filters))
	for name, fc := range cfg.Filters {
		filters[name] = filter.Config{
			Enabled:  fc.Enabled,
			Settings: fc.Settings,
		}
	}
	return filter.NewChainFromConfig(filters)
}

// newSource creates the configured button source.
func newSource(cfg *config.Config) (input.Source, error) {
	steps := make([]input.Step, 0, len(cfg.Input.Script))
	for _, sc := range cfg.Input.Script {
		b, err := appinput.ParseButton(sc.Button)
		if err != nil {
			return nil, err
		}
		steps = append(steps, input.Step{
			At:     msToDuration(sc.AtMs),
			Button: b,
			Hold:   msToDuration(sc.HoldMs),
		})
	}

	return input.New(cfg.Input.Type, input.Options{
		Hold:      cfg.Hold(),
		Steps:     steps,
		ExitAfter: cfg.ExitAfter(),
	})
}

// list prints the playlist with the derived names and the embedded tags.
func list(cfg *config.Config) error {
	chain, err := newFilterChain(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	pl, err := player.Rebuild(context.Background(), storage.NewDirLister(), cfg.Library.Dir, cfg.Library.Capacity, chain)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSONG\tARTIST\tTAG TITLE\tTAG ARTIST\tFORMAT")
	for i, id := range pl.TrackIDs() {
		song, artist := track.DeriveDisplayName(id)
		tags, err := storage.ReadTags(id)
		if err != nil {
			zlog.Debug().Msgf("No tags: id=%s err=%v", id, err)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, song, artist, tags.Title, tags.Artist, tags.Format)
	}
	return w.Flush()
}

// printFilters prints available filters.
func printFilters() {
	registry := filter.GetRegistered()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Available Filters:")
	for _, name := range names {
		f := registry[name]()
		fmt.Printf("  %-20s - %s\n", name, f.Description())
	}
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
