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
	"text/tabwriter"
	"time"

	"github.com/oszuidwest/zwfm-lnkgen/internal/api"
	"github.com/oszuidwest/zwfm-lnkgen/internal/auth"
	"github.com/oszuidwest/zwfm-lnkgen/internal/batch"
	"github.com/oszuidwest/zwfm-lnkgen/internal/bin2lnk"
	"github.com/oszuidwest/zwfm-lnkgen/internal/config"
	"github.com/oszuidwest/zwfm-lnkgen/internal/database"
	"github.com/oszuidwest/zwfm-lnkgen/internal/lnkscript"
	"github.com/oszuidwest/zwfm-lnkgen/internal/repository"
	"github.com/oszuidwest/zwfm-lnkgen/internal/scheduler"
	"github.com/oszuidwest/zwfm-lnkgen/internal/services"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
	"github.com/oszuidwest/zwfm-lnkgen/pkg/logger"
)

type outWriter = io.Writer

// errJobsFailed makes generate exit non-zero after writing the successful scripts.
var errJobsFailed = errors.New("one or more jobs failed")

// newEngine builds the engine and script builder from the generator settings.
func newEngine(cfg config.GeneratorConfig) (*swire.Engine, *lnkscript.Builder, error) {
	opts := []swire.Option{
		swire.WithBusBitRate(cfg.BusBitRate),
		swire.WithLoopCount(cfg.LoopCount),
	}
	if cfg.RestoreShapes {
		opts = append(opts, swire.WithShapeRestore())
	}

	var tmpl *lnkscript.Template
	if cfg.RouteTemplatePath != "" {
		t, err := lnkscript.LoadTemplate(cfg.RouteTemplatePath)
		if err != nil {
			return nil, nil, err
		}
		tmpl = t
	}
	return swire.NewEngine(opts...), lnkscript.NewBuilder(tmpl), nil
}

func runGenerate(args []string, out outWriter) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	jobsPath := fs.String("jobs", "", "YAML job file (default: built-in batch)")
	outDir := fs.String("out", "", "output directory (default: LNKGEN_OUTPUT_PATH)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dir := cfg.Generator.OutputPath
	if *outDir != "" {
		dir = *outDir
		// #nosec G301 - generated scripts are shared with the analyzer host
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	jobs, err := config.LoadJobs(*jobsPath)
	if err != nil {
		return err
	}
	engine, builder, err := newEngine(cfg.Generator)
	if err != nil {
		return err
	}

	result := batch.NewRunner(batch.EngineRenderer{Engine: engine, Builder: builder}, batch.DirSink{Dir: dir}).
		Run(context.Background(), jobs)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, j := range result.Jobs {
		if j.OK() {
			fmt.Fprintf(tw, "ok\troute %d\t%s\t%d frames\n", j.Request.Route, j.FileName, j.Frames)
		} else {
			fmt.Fprintf(tw, "FAILED\troute %d\t%s\n", j.Request.Route, j.Error)
		}
	}
	fmt.Fprintf(tw, "\n%d written to %s, %d failed\n", result.Succeeded(), dir, result.Failed())
	if err := tw.Flush(); err != nil {
		return err
	}

	if result.Failed() > 0 {
		return errJobsFailed
	}
	return nil
}

func runRoutes(_ []string, out outWriter) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tCHANNELS\tRX\tTX\tCLOCK\tMASK")
	for _, d := range swire.DefaultRoutes().All() {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t0x%x\n", d.Number, d.ChannelCount, d.RxPort, d.TxPort, d.ClockSource(), d.ChannelMask())
	}
	return tw.Flush()
}

func runBin2DP(args []string, out outWriter) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("bin2dp", flag.ContinueOnError)
	in := fs.String("in", "", "firmware binary")
	outDir := fs.String("out", ".", "output directory")
	ver := fs.Int("version", cfg.Generator.Bin2LnkVersion, "converter format version (default: LNKGEN_BIN2LNK_VERSION)")
	tmplPath := fs.String("template", "", "data port download skeleton to fill (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	dataPath := filepath.Join(*outDir, lnkscript.DataFileName(*in))
	if err := bin2lnk.NewConverter(*ver).ConvertDataPort(*in, dataPath); err != nil {
		return err
	}
	fmt.Fprintln(out, dataPath)

	if *tmplPath == "" {
		return nil
	}
	tmpl, err := lnkscript.LoadTemplate(*tmplPath)
	if err != nil {
		return err
	}
	script, err := lnkscript.FillDataPortScript(tmpl, dataPath, time.Now())
	if err != nil {
		return err
	}
	scriptPath := filepath.Join(*outDir, lnkscript.DataPortScriptName(*in))
	if err := os.WriteFile(scriptPath, script, 0o644); err != nil { // #nosec G306 - shared with bench tooling
		return err
	}
	fmt.Fprintln(out, scriptPath)
	return nil
}

func runBin2CP(args []string, out outWriter) error {
	fs := flag.NewFlagSet("bin2cp", flag.ContinueOnError)
	in := fs.String("in", "", "firmware binary")
	outDir := fs.String("out", ".", "output directory")
	header := fs.String("header", "", "control port header template")
	content := fs.String("content", "", "control port per-dword content template")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *header == "" || *content == "" {
		return errors.New("-in, -header and -content are required")
	}

	tmpl, err := bin2lnk.LoadControlPortTemplate(*header, *content)
	if err != nil {
		return err
	}
	scriptPath := filepath.Join(*outDir, lnkscript.ControlPortScriptName(*in))
	if err := bin2lnk.ConvertControlPort(tmpl, *in, scriptPath, time.Now()); err != nil {
		return err
	}
	fmt.Fprintln(out, scriptPath)
	return nil
}

func runMigrate(args []string, _ outWriter) error {
	dir := database.Up
	if len(args) > 0 {
		dir = database.Direction(args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection: %v", err)
		}
	}()
	return database.Migrate(db, dir)
}

func runServe(_ []string, _ outWriter) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Initialize(string(cfg.LogLevel), !cfg.Environment.IsProduction()); err != nil {
		return err
	}

	// Log configuration (without sensitive data)
	logger.Info("Database config: Host=%s, Port=%d, User=%s, Database=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Database)
	logger.Info("Server config: Address=%s, API keys=%d", cfg.Server.Address, len(cfg.Auth.APIKeys))

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection: %v", err)
		}
	}()

	// Migrations are run explicitly with "lnkgen migrate"

	engine, builder, err := newEngine(cfg.Generator)
	if err != nil {
		return err
	}
	scriptSvc := services.NewScriptService(engine, builder, repository.NewTxManager(db), repository.NewScriptRepository(db))

	authSvc, err := auth.NewService(cfg.Auth.APIKeys, cfg.Environment)
	if err != nil {
		return err
	}

	utils.InitializeValidators()
	router := api.SetupRouter(cfg, scriptSvc, authSvc)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting lnkgen API server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	cleanup := scheduler.NewArchiveCleanupService(scriptSvc, cfg.Generator.OutputPath, cfg.Archive.Retention, cfg.Archive.CleanupInterval)
	cleanup.Start()
	defer cleanup.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("Shutting down server...")
	cleanup.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
