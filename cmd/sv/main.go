package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	"github.com/vanderheijden86/snapview/pkg/config"
	"github.com/vanderheijden86/snapview/pkg/debug"
	"github.com/vanderheijden86/snapview/pkg/metrics"
	"github.com/vanderheijden86/snapview/pkg/snapshot"
	"github.com/vanderheijden86/snapview/pkg/ui"
	"github.com/vanderheijden86/snapview/pkg/version"
	"github.com/vanderheijden86/snapview/pkg/watcher"
	"github.com/vanderheijden86/snapview/pkg/workspace"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file (default ~/.config/sv/config.yaml)")
	hit := flag.String("hit", "", "Hit-test a click at X,Y in displayed-image pixels and print JSON")
	display := flag.String("display", "", "Displayed screenshot size WxH for --hit (default: natural size)")
	search := flag.String("search", "", "Print elements whose label contains TEXT as JSON")
	value := flag.String("value", "", "Print elements with a string property containing TEXT as JSON")
	jsonFlag := flag.Bool("json", false, "Print the element tree with decoded properties as JSON")
	exportPNG := flag.String("export-png", "", "Write the screenshot with the selection outlined as PNG")
	exportSVG := flag.String("export-svg", "", "Write the screenshot with the selection outlined as SVG")
	exportSQLite := flag.String("export-sqlite", "", "Write the element tree to a SQLite database")
	selectID := flag.Int("select", 0, "Element id to select (TUI) or outline (exports)")
	onlyMatches := flag.Bool("only-matches", false, "Hide non-matching elements while filtering")
	noWatch := flag.Bool("no-watch", false, "Do not reload the snapshot when it changes on disk")
	flag.Usage = usage
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		usage()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: expected at most one snapshot file or directory")
		os.Exit(2)
	}
	target := flag.Arg(0)
	if target == "" {
		target = "."
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if *onlyMatches {
		cfg.UI.OnlyMatches = true
	}

	robot := robotOptions{
		Hit:          *hit,
		Display:      *display,
		Search:       *search,
		Value:        *value,
		JSON:         *jsonFlag,
		SelectID:     *selectID,
		ExportPNG:    *exportPNG,
		ExportSVG:    *exportSVG,
		ExportSQLite: *exportSQLite,
	}
	prompt := !robot.active()
	accessible := !isTerminal(os.Stdin) || !isTerminal(os.Stdout) || os.Getenv("ACCESSIBLE") != ""

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := resolveSnapshot(ctx, target, prompt, accessible)
	if err != nil {
		if errors.Is(err, ui.ErrPickerCanceled) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	snap, err := snapshot.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		os.Exit(1)
	}
	if snap.ScreenshotErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", snap.ScreenshotErr)
	}

	if robot.active() {
		if err := runRobot(os.Stdout, snap, robot); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg.AddRecent(filepath.Dir(path))
	if err := saveConfig(*configPath, cfg); err != nil {
		debug.Log("config: %v", err)
	}

	opts := []ui.Option{ui.WithSelection(*selectID)}
	if !*noWatch && cfg.WatchEnabled() {
		w, err := startWatcher(ctx, path, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload disabled: %v\n", err)
		} else {
			defer w.Stop()
			opts = append(opts, ui.WithWatcher(w))
		}
	}

	m := ui.NewModel(snap, cfg, opts...)

	if err := runTUIProgram(ctx, m); err != nil {
		fmt.Printf("Error running sv: %v\n", err)
		os.Exit(1)
	}
	logTimings()
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: sv [options] [SNAPSHOT.xml | DIR]")
	fmt.Fprintln(out, "\nInspect a UI snapshot: element tree, screenshot and properties.")
	fmt.Fprintln(out, "With a directory, pick one of its *.xml snapshots.")
	fmt.Fprintln(out)
	flag.PrintDefaults()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// loadConfig reads the config from path, or from the default location when
// path is empty. The returned config is usable even with an error.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func saveConfig(path string, cfg config.Config) error {
	if path != "" {
		return config.SaveTo(cfg, path)
	}
	return config.Save(cfg)
}

// resolveSnapshot turns the positional argument into one snapshot file. A
// directory is scanned in parallel; with several snapshots the user picks
// one when prompt is set, through plain prompts when accessible is set.
func resolveSnapshot(ctx context.Context, target string, prompt, accessible bool) (string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", target, err)
	}
	if !info.IsDir() {
		return target, nil
	}

	scanner := workspace.NewScanner()
	if debug.Enabled() {
		scanner.SetLogger(log.New(os.Stderr, "[SV_DEBUG] ", log.Ltime))
	}
	entries, err := scanner.Scan(ctx, target)
	if err != nil {
		return "", err
	}
	if !prompt {
		return onlySnapshot(target, entries)
	}
	return ui.PickSnapshot(target, entries, accessible)
}

// onlySnapshot returns the single readable snapshot in entries.
func onlySnapshot(dir string, entries []workspace.Entry) (string, error) {
	var found []string
	for _, e := range entries {
		if e.Err == nil {
			found = append(found, e.Path)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s: %w", dir, workspace.ErrNoSnapshots)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("%s holds %d snapshots; name one of them", dir, len(found))
}

func startWatcher(ctx context.Context, path string, cfg config.Config) (*watcher.Watcher, error) {
	var wopts []watcher.Option
	if cfg.Watch.DebounceMs > 0 {
		wopts = append(wopts, watcher.WithDebounceDuration(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond))
	}
	wopts = append(wopts,
		watcher.WithForcePoll(cfg.Watch.ForcePoll),
		watcher.WithCompanions(config.WhitelistFile),
		watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
	)
	w, err := watcher.New(path, wopts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func runTUIProgram(ctx context.Context, m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Optional auto-quit for automated tests: set SV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("SV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()
				select {
				case <-ctx.Done():
				case <-timer.C:
					p.Quit()
				}
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// logTimings writes collected hot-path timings to the debug log.
func logTimings() {
	if !debug.Enabled() {
		return
	}
	for _, s := range metrics.AllStats() {
		debug.Log("timing %s: count=%d avg=%.2fms max=%.2fms", s.Name, s.Count, s.AvgMs, s.MaxMs)
	}
}
