package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/capital-lab/internal/config"
	"github.com/iwvelando/capital-lab/internal/dataset"
	"github.com/iwvelando/capital-lab/internal/game"
	"github.com/iwvelando/capital-lab/internal/server"
	"github.com/iwvelando/capital-lab/pkg/constants"
	"github.com/iwvelando/capital-lab/pkg/irr"
	"github.com/iwvelando/capital-lab/pkg/output"
	"github.com/iwvelando/capital-lab/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP server instead of a one-shot solve")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flag.Parse()

	if *serve {
		runServer(*serverConfigLocation, *configLocation, *logLevel)
		return
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Parse the cash flow series.
	series, err := conf.Series()
	if err != nil {
		logger.Fatal("failed to parse cash flows",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Run the solver.
	result, err := irr.Solve(series, conf.SearchRange())
	if err != nil {
		logger.Fatal("failed to solve for IRR",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	referenceNPV, err := irr.NPV(series, conf.ReferenceRate())
	if err != nil {
		logger.Fatal("failed to evaluate the reference NPV",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	report := output.Report{
		Series:               series,
		Result:               result,
		ReferenceRatePercent: conf.ReferenceRatePercent,
		ReferenceNPV:         referenceNPV,
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(report)
	case constants.OutputFormatCSV:
		output.CsvFormat(report)
	}

}

// runServer starts the HTTP server with the dataset store, scheduled
// refresh, and optional game history recorder.
func runServer(serverConfigLocation, configLocation, logLevel string) {
	serverConf, err := server.LoadConfig(serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", serverConfigLocation, err)
		return
	}

	logger, err := initializeLogger(serverConf.Logging, logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Application config is optional in serve mode; it supplies the dataset
	// source and game options when present.
	var appConf config.Configuration
	appConf.ApplyDefaults()
	if loaded, err := config.LoadConfiguration(configLocation); err == nil {
		appConf = *loaded
	} else {
		logger.Warn("no application configuration; using defaults",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the benchmark dataset through the fallback ladder.
	store := dataset.NewStore(logger)
	fetcher := dataset.NewHTTPFetcher(appConf.Dataset.URL, logger)
	if err := store.Load(ctx, fetcher, appConf.Dataset.File); err != nil {
		logger.Fatal("failed to load the industry dataset",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}

	refresher, err := store.ScheduleRefresh(ctx, appConf.Dataset.RefreshSchedule, fetcher)
	if err != nil {
		logger.Fatal("failed to schedule dataset refresh",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
	defer refresher.Stop()

	// Game history recorder: sqlite when configured, otherwise a no-op.
	var recorder game.Recorder = game.NewNoopRecorder()
	if appConf.Game.HistoryDatabase != "" {
		sqliteRecorder, err := game.NewSQLiteRecorder(appConf.Game.HistoryDatabase, logger)
		if err != nil {
			logger.Fatal("failed to open the game history database",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
		}
		recorder = sqliteRecorder
	}
	defer func() {
		_ = recorder.Close()
	}()

	handler := server.NewHandler(server.Options{
		Logger:        logger,
		MaxUploadSize: serverConf.UploadSizeBytes(),
		Version:       version,
		Store:         store,
		Recorder:      recorder,
		Seed:          appConf.Game.Seed,
	})

	httpServer := &http.Server{
		Addr:    serverConf.Address,
		Handler: handler,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("op", "main.runServer"),
			zap.String("address", serverConf.Address),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Fatal("server exited with error",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}

	logger.Info("server stopped",
		zap.String("op", "main.runServer"),
	)
}
