package main

import (
	"fmt"
	"os"

	"fjacquet/sepa-export/cmd/calendar"
	"fjacquet/sepa-export/cmd/export"
	"fjacquet/sepa-export/cmd/load"
	"fjacquet/sepa-export/cmd/root"
	"fjacquet/sepa-export/cmd/verify"
	"fjacquet/sepa-export/internal/config"
	"fjacquet/sepa-export/internal/logging"
)

func init() {
	// Messages logged while the configuration loads use the environment
	// level until the container replaces the logger.
	root.Log = logging.NewLogrusAdapter(
		config.GetEnv("SEPA_LOG_LEVEL", "info"),
		config.GetEnv("SEPA_LOG_FORMAT", "text"),
	)

	root.Init()

	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(verify.Cmd)
	root.Cmd.AddCommand(calendar.Cmd)
	root.Cmd.AddCommand(load.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
