package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kathai/refinance-engine/internal/application"
	"github.com/kathai/refinance-engine/internal/catalog"
	"github.com/kathai/refinance-engine/internal/config"
	"github.com/kathai/refinance-engine/internal/engine"
	"github.com/kathai/refinance-engine/internal/server"
	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/kathai/refinance-engine/pkg/output"
	"github.com/kathai/refinance-engine/pkg/validation"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

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

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	catalogLocation := flag.String("catalog", "", "path to catalog file (overrides config)")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of running a one-shot comparison")
	listen := flag.String("listen", "", "listen address override for -serve")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	catalogPath := conf.CatalogPath
	if *catalogLocation != "" {
		catalogPath = *catalogLocation
	}
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog",
			zap.String("op", "main"),
			zap.String("catalog", catalogPath),
			zap.Error(err),
		)
	}
	for _, warning := range cat.Validate() {
		logger.Warn("Catalog warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *serve {
		runServer(logger, conf, cat, *listen)
		return
	}

	runComparison(logger, conf, cat, *outputFormatFlag)
}

func runComparison(logger *zap.Logger, conf *config.Configuration, cat *catalog.Catalog, outputFormatFlag string) {
	if conf.Request == nil {
		logger.Fatal("no request block in configuration; supply one or run with -serve",
			zap.String("op", "main"),
		)
	}

	outputFormat := conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	result, err := engine.New(logger).Compare(cat, engine.Request{
		Principal:        conf.Request.Principal,
		PropertyValue:    conf.Request.PropertyValue,
		MonthlyIncome:    conf.Request.MonthlyIncome,
		DesiredTermYears: conf.Request.DesiredTermYears,
		BaselinePayment:  conf.Request.BaselinePayment,
		ReferenceRate:    conf.Market.ReferenceRate,
	})
	if err != nil {
		logger.Fatal("failed to compute comparison",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(result)
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	case constants.OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			logger.Fatal("failed to encode result",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}

func runServer(logger *zap.Logger, conf *config.Configuration, cat *catalog.Catalog, listenOverride string) {
	store, err := application.NewStore(conf.Server.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open application store",
			zap.String("op", "main"),
			zap.String("database", conf.Server.DatabasePath),
			zap.Error(err),
		)
	}
	defer func() {
		_ = store.Close()
	}()

	handler := server.NewHandler(server.Options{
		Logger:        logger,
		Catalog:       cat,
		Store:         store,
		ReferenceRate: conf.Market.ReferenceRate,
		MaxBodyBytes:  conf.Server.MaxBodyBytes,
		Version:       version,
	})

	address := conf.Server.Address
	if listenOverride != "" {
		address = listenOverride
	}

	logger.Info("serving comparison API",
		zap.String("op", "main"),
		zap.String("address", address),
	)
	if err := http.ListenAndServe(address, handler); err != nil {
		logger.Fatal("server stopped",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
