package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/canvasfmt/internal/config"
)

var forceInit bool

// initCmd: canvasfmt init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default options",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initConfigurationFile(cfgFile, forceInit)
		if err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return &ExitError{Code: 1, Err: err}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(path string, force bool) (string, error) {
	if path == "" {
		path = config.FileName
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists, use --force to overwrite it", path)
		}
	}
	return path, config.Write(path, config.Default())
}
