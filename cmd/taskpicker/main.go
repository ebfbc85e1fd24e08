package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	charmLog "github.com/charmbracelet/log"
	"github.com/marcus/taskpicker/internal/app"
	"github.com/marcus/taskpicker/internal/config"
	"github.com/marcus/taskpicker/internal/index"
	_ "github.com/marcus/taskpicker/internal/index/dataview"
	_ "github.com/marcus/taskpicker/internal/index/sqlite"
	"github.com/marcus/taskpicker/internal/keymap"
	"github.com/marcus/taskpicker/internal/plugin"
	"github.com/marcus/taskpicker/internal/plugins/tasks"
	"github.com/marcus/taskpicker/internal/settings"
	"github.com/marcus/taskpicker/internal/state"
	"github.com/marcus/taskpicker/internal/styles"
	"github.com/marcus/taskpicker/internal/tasklist"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath   = flag.String("config", "", "path to config file")
	vaultRoot    = flag.String("vault", "", "vault root directory (overrides config)")
	indexSource  = flag.String("index", "", "index source id: sqlite or dataview (overrides config)")
	debugFlag    = flag.Bool("debug", false, "enable debug logging")
	versionFlag  = flag.Bool("version", false, "print version and exit")
	shortVersion = flag.Bool("v", false, "print version and exit (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *shortVersion {
		fmt.Printf("taskpicker version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *vaultRoot != "" {
		cfg.Vault.Root = *vaultRoot
	}
	if *indexSource != "" {
		cfg.Index.Source = *indexSource
	}

	workDir, err := filepath.Abs(config.ExpandPath(cfg.Vault.Root))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve vault root: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) > 0 {
		var err error
		switch args[0] {
		case "list":
			logger := newLogger(os.Stderr, cfg.Log.Level, *debugFlag, charmLog.TextFormatter)
			err = runList(os.Stdout, cfg, workDir, args[1:], logger)
		case "init":
			err = runInit(os.Stdout, cfg, workDir)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
			flag.Usage()
			os.Exit(2)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
			os.Exit(1)
		}
		return
	}

	// The TUI owns the terminal, so logs go to a file.
	logPath := cfg.Log.Path
	if logPath == "" {
		logPath = filepath.Join(config.ConfigDir(), "taskpicker.log")
	}
	logFile, err := openLogFile(config.ExpandPath(logPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.Log.Level, *debugFlag, charmLog.LogfmtFormatter)
	slog.SetDefault(logger)

	styles.ApplyTheme(cfg.UI.Theme.Name, cfg.UI.Theme.Overrides)

	// Load persistent state (ignore errors - state is optional)
	if err := state.Init(); err != nil {
		logger.Warn("load state", "err", err)
	}

	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	for key, cmdID := range cfg.Keymap.Overrides {
		km.SetUserOverride(key, cmdID)
	}

	pluginCtx := &plugin.Context{
		WorkDir:   workDir,
		ConfigDir: config.ConfigDir(),
		Config:    cfg,
		Index:     openIndex(cfg, workDir, logger),
		Data:      state.ForVault(workDir),
		Keymap:    km,
		Logger:    logger,
	}

	registry := plugin.NewRegistry(pluginCtx)
	if err := registry.Register(tasks.New()); err != nil {
		logger.Warn("task list unavailable", "err", err)
	}

	model := app.New(registry, km, cfg, effectiveVersion(Version))
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(config.ExpandPath(path))
	}
	return config.Load()
}

// newLogger builds a slog logger backed by charmbracelet/log.
func newLogger(w io.Writer, level string, debugMode bool, formatter charmLog.Formatter) *slog.Logger {
	lvl, err := charmLog.ParseLevel(level)
	if err != nil {
		lvl = charmLog.InfoLevel
	}
	if debugMode {
		lvl = charmLog.DebugLevel
	}
	handler := charmLog.NewWithOptions(w, charmLog.Options{
		Level:           lvl,
		Prefix:          "taskpicker",
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
	return slog.New(handler)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// openIndex returns the configured index source, or the first detected one.
// A nil result leaves the task list reporting the index as unavailable.
func openIndex(cfg *config.Config, root string, logger *slog.Logger) index.Source {
	opts := index.Options{Root: root, Path: config.ExpandPath(cfg.Index.Path)}
	if cfg.Index.Source != "" && cfg.Index.Path != "" {
		src, err := index.Open(cfg.Index.Source, opts)
		if err == nil {
			return src
		}
		logger.Warn("open index", "source", cfg.Index.Source, "err", err)
	}

	found, err := index.DetectSources(opts)
	if err != nil {
		logger.Warn("index detection failed", "err", err)
	}
	src := index.Pick(found, cfg.Index.Source)
	if src == nil {
		logger.Warn("no index source found", "vault", root)
		return nil
	}
	logger.Info("index source", "id", src.ID(), "name", src.Name())
	return src
}

// runList prints a built list without starting the TUI.
func runList(w io.Writer, cfg *config.Config, root string, args []string, logger *slog.Logger) error {
	modeName := "task"
	if len(args) > 0 {
		modeName = args[0]
	}
	mode, err := tasklist.ParseMode(modeName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store := settings.NewStore(state.ForVault(root), "task-list")
	s, err := store.Load(ctx)
	if err != nil {
		logger.Warn("load settings", "err", err)
	}

	list, err := tasklist.NewBuilder(openIndex(cfg, root, logger), logger).Build(ctx, mode, s.TargetFolder)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%d)\n", mode.Title(), len(list))
	for _, t := range list {
		tags := ""
		if len(t.Tags) > 0 {
			tags = " " + strings.Join(t.Tags, " ")
		}
		fmt.Fprintf(w, "- [%s] %s%s  %s:%d\n", t.Status, t.Text, tags, t.Path, t.Position.Start.Line+1)
		for _, line := range tasklist.ContextLines(t.Context) {
			fmt.Fprintf(w, "      %s\n", line)
		}
	}
	return nil
}

// runInit writes the effective config, flag overrides included, to the
// config file so later runs pick up the same vault and index.
func runInit(w io.Writer, cfg *config.Config, root string) error {
	cfg.Vault.Root = root
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(w, "wrote %s\n", config.ConfigPath())
	return nil
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision != "" {
		ver := "devel+" + revision
		if len(ver) > 20 {
			ver = ver[:20]
		}
		if dirty {
			ver += "+dirty"
		}
		return ver
	}
	return "devel"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: taskpicker [options] [list task|backlog | init]\n\n")
		fmt.Fprintf(os.Stderr, "Pick open and deferred tasks from a notes vault.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
