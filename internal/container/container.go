// Package container provides dependency injection for the sepa-export
// application. It centralizes the creation and wiring of all
// application dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/sepa-export/internal/config"
	"fjacquet/sepa-export/internal/database"
	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/exporter"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/internal/metrics"
	"fjacquet/sepa-export/internal/report"
	"fjacquet/sepa-export/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	recorder *metrics.Recorder
	reports  *report.ReportGenerator
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
	return NewContainerWithLogger(cfg, logger)
}

// NewContainerWithLogger is NewContainer with an injected logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	logger.Debug("Container initialized successfully",
		logging.F("store_type", cfg.Store.Type),
		logging.F("remittance_style", string(cfg.RemittanceStyle())),
		logging.F("shift_days", cfg.SEPA.ShiftDays))

	return &Container{
		logger:   logger,
		config:   cfg,
		recorder: metrics.NewRecorder(),
		reports:  report.NewReportGenerator(logger),
	}, nil
}

// OpenSource opens the batch source at path. A ".db"/".sqlite" file
// or store.type=sqlite selects SQLite, anything else a YAML batch file.
// An empty path falls back to store.path.
func (c *Container) OpenSource(ctx context.Context, path string) (store.Source, error) {
	if path == "" {
		path = c.config.Store.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no input given: pass --input or set store.path")
	}

	if c.sourceType(path) == config.StoreSQLite {
		repo, err := database.Open(ctx, path, c.logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	repo, err := store.OpenYAML(path, c.logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (c *Container) sourceType(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") {
		return config.StoreSQLite
	}
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return config.StoreYAML
	}
	return c.config.Store.Type
}

// Holidays combines the store's keyword holidays with the optional
// TARGET2 closing days.
func (c *Container) Holidays(source store.Source) (dateutils.NonBusinessDayLookup, error) {
	var fromStore dateutils.NonBusinessDayLookup
	if source != nil {
		var err error
		fromStore, err = source.HolidayLookup(c.config.SEPA.BankHolidayKeyword)
		if err != nil {
			return nil, err
		}
	}
	var target dateutils.NonBusinessDayLookup
	if c.config.SEPA.TargetHolidays {
		target = dateutils.TargetClosingDays
	}
	return dateutils.CombineLookups(fromStore, target), nil
}

// NewExporter wires a BatchExporter over source with the configured rules.
func (c *Container) NewExporter(source store.Source) (*exporter.BatchExporter, error) {
	holidays, err := c.Holidays(source)
	if err != nil {
		return nil, fmt.Errorf("loading non-business days: %w", err)
	}
	return exporter.New(source, exporter.Options{
		ShiftDays: c.config.SEPA.ShiftDays,
		Holidays:  holidays,
		Style:     c.config.RemittanceStyle(),
		Logger:    c.logger,
		Recorder:  c.recorder,
	}), nil
}

// FlushMetrics writes the counters to metrics.textfile, if configured.
func (c *Container) FlushMetrics() error {
	path := c.config.Metrics.Textfile
	if path == "" {
		return nil
	}
	if err := c.recorder.WriteTextfile(path); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	c.logger.Debug("Wrote metrics textfile", logging.F(logging.FieldOutputFile, path))
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRecorder returns the metrics recorder.
func (c *Container) GetRecorder() *metrics.Recorder {
	return c.recorder
}

// GetReportGenerator returns the export report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// Close flushes metrics.
func (c *Container) Close() error {
	return c.FlushMetrics()
}
