package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/banshee-data/trackconsole/internal/api"
	"github.com/banshee-data/trackconsole/internal/archive"
	"github.com/banshee-data/trackconsole/internal/config"
	"github.com/banshee-data/trackconsole/internal/console"
	"github.com/banshee-data/trackconsole/internal/engine"
	"github.com/banshee-data/trackconsole/internal/fsutil"
	"github.com/banshee-data/trackconsole/internal/monitoring"
	"github.com/banshee-data/trackconsole/internal/plotdata"
	"github.com/banshee-data/trackconsole/internal/render"
	"github.com/banshee-data/trackconsole/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "Listen address")
	configPath  = flag.String("config", "", "Console config file (.json, .yaml or .yml)")
	dbPath      = flag.String("db", "trackconsole.db", "Run archive database; empty disables archiving")
	engineCmd   = flag.String("engine", "", "Tracking engine command (overrides config)")
	engineURL   = flag.String("engine-url", "", "Remote tracking engine endpoint (overrides config)")
	devMode     = flag.Bool("dev", false, "Treat input files as recorded engine output instead of running an engine")
	inputFile   = flag.String("input", "", "Detection file to select at startup")
	renderDir   = flag.String("render-dir", "", "Process -input, write one PNG and one HTML per plot mode here, then exit")
	logFile     = flag.String("log-file", "", "Also write logs to this file, rotated by size")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	os.Exit(realMain(flag.Args()))
}

// realMain returns the process exit code so deferred cleanup, such as
// flushing the rotating log, runs before the process exits.
func realMain(args []string) int {
	if *showVersion {
		fmt.Println(version.String())
		return 0
	}

	if len(args) > 0 && args[0] == "migrate" {
		if err := archive.RunMigrateCommand(args[1:], *dbPath, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			return 1
		}
		return 0
	}

	if *logFile != "" {
		logf, closer := monitoring.NewRotatingLogf(*logFile, os.Stderr)
		defer closer.Close()
		monitoring.SetLogger(logf)
	}

	monitoring.Logf("starting %s", version.String())
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		monitoring.Logf("trackconsole: %v", err)
		return 1
	}
	return 0
}

func run(ctx context.Context) error {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg, *devMode, *engineCmd, *engineURL)
	if err != nil {
		return err
	}

	panel := monitoring.NewOutputPanel(cfg.GetPanelLines(), nil)
	metrics, err := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := console.Options{
		Engine:    eng,
		Reporter:  monitoring.Tee(panel, monitoring.LogReporter{}),
		Metrics:   metrics,
		LogDir:    cfg.GetLogDir(),
		RunsLimit: cfg.GetArchiveRunsLimit(),
		Params:    cfg.GetParams(),
		System:    cfg.GetSystemConfig(),
		Mode:      cfg.GetPlotMode(),
		Marker:    cfg.GetMarkerSize(),
	}

	var db *archive.DB
	if *dbPath != "" && *renderDir == "" {
		db, err = archive.Open(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to open run archive: %w", err)
		}
		defer db.Close()
		opts.Archive = db
	}

	session, err := console.New(opts)
	if err != nil {
		return err
	}
	if *inputFile != "" {
		if err := session.SelectFile(*inputFile); err != nil {
			return err
		}
	}

	if *renderDir != "" {
		runCtx, cancel := withTimeout(ctx, cfg.GetEngineTimeout())
		defer cancel()
		return renderAll(runCtx, session, fsutil.OSFileSystem{}, *renderDir)
	}

	srvOpts := api.Options{
		Panel:           panel,
		Metrics:         metrics,
		RenderCacheSize: cfg.GetRenderCacheSize(),
		ProcessTimeout:  cfg.GetEngineTimeout(),
		InputDirs:       cfg.GetInputDirs(),
	}
	if db != nil {
		srvOpts.Admin = db
	}
	handler, err := api.NewServer(session, srvOpts).Handler()
	if err != nil {
		return err
	}
	return serve(ctx, *listen, handler)
}

// loadConfig reads path, or returns an empty config (all defaults) when
// path is empty.
func loadConfig(path string) (*config.ConsoleConfig, error) {
	if path == "" {
		return config.EmptyConsoleConfig(), nil
	}
	cfg, err := config.LoadConsoleConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// buildEngine picks the engine adapter. Flags override the config; dev mode
// wins over both.
func buildEngine(cfg *config.ConsoleConfig, dev bool, command, url string) (engine.Engine, error) {
	if dev {
		return engine.Replay{FS: fsutil.OSFileSystem{}}, nil
	}
	if url == "" && command == "" {
		url = cfg.GetEngineURL()
		command = cfg.GetEngineCommand()
	}
	switch {
	case url != "":
		return engine.Remote{URL: url, Client: &http.Client{Timeout: cfg.GetEngineTimeout()}}, nil
	case command != "":
		return engine.Exec{Command: command, Args: cfg.GetEngineArgs()}, nil
	}
	return nil, errors.New("no tracking engine configured (use -engine, -engine-url or -dev)")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// renderAll processes the selected input once and writes <mode>.png and
// <mode>.html into dir for every plot mode.
func renderAll(ctx context.Context, session *console.Session, fsys fsutil.FileSystem, dir string) error {
	if _, err := session.Process(ctx); err != nil {
		return err
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, mode := range plotdata.Modes() {
		if err := session.SetMode(mode); err != nil {
			return err
		}
		snap := session.Snapshot()
		base := filepath.Join(dir, mode.Slug())
		if err := writeFile(fsys, base+".png", func(w io.Writer) error {
			return render.WritePNG(w, snap, render.DefaultWidth, render.DefaultHeight)
		}); err != nil {
			return err
		}
		if err := writeFile(fsys, base+".html", func(w io.Writer) error {
			return render.WriteHTML(w, snap)
		}); err != nil {
			return err
		}
		monitoring.Logf("wrote %s.png and %s.html", base, base)
	}
	return nil
}

func writeFile(fsys fsutil.FileSystem, path string, write func(io.Writer) error) error {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		monitoring.Logf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	monitoring.Logf("Graceful shutdown complete")
	return nil
}
