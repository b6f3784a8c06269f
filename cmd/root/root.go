// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/sepa-export/internal/config"
	"fjacquet/sepa-export/internal/container"
	"fjacquet/sepa-export/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input     string
	Output    string
	Config    string
	LogLevel  string
	LogFormat string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapter("info", "text")

	// AppConfig and AppContainer are set up before every command runs.
	AppConfig    *config.Config
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "sepa-export",
		Short: "A CLI tool to generate SEPA credit transfer and direct debit files.",
		Long: `sepa-export turns an approved payment batch into SEPA XML files.
Credit transfers produce one pain.001.003.03 document, direct debits a zip
archive with one pain.008.003.02 document per mandate scheme and sequence type.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to sepa-export!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to flush metrics")
			}
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input batch file (.yaml) or database (.db)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output directory")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Config, "config", "", "Config file (default $HOME/.sepa-export/config.yaml)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
}

// setup loads .env and the configuration, applies flag overrides and
// builds the container.
func setup(cmd *cobra.Command, args []string) error {
	config.LoadEnv(Log)

	cfg, err := config.LoadConfig(SharedFlags.Config)
	if err != nil {
		return err
	}
	applyFlags(cfg, SharedFlags)

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	AppConfig = cfg
	AppContainer = c
	Log = c.GetLogger()
	return nil
}

func applyFlags(cfg *config.Config, flags CommonFlags) {
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.Output != "" {
		cfg.Output.Directory = flags.Output
	}
}

// GetContainer returns the application container, nil before setup ran.
func GetContainer() *container.Container {
	return AppContainer
}

// GetConfig returns the loaded configuration, nil before setup ran.
func GetConfig() *config.Config {
	return AppConfig
}
