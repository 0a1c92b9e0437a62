package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/vdf"
	"source.quilibrium.com/quilibrium/monorepo/vdf/config"
)

var configDirectory string
var encoding string
var debug bool
var VDFConfig *config.Config
var Engine *vdf.Engine

var rootCmd = &cobra.Command{
	Use:   "vdf",
	Short: "Class group verifiable delay function",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := codecFor(encoding); err != nil {
			return err
		}

		var err error
		if configDirectory == "" {
			VDFConfig = config.DefaultConfig()
		} else {
			VDFConfig, err = config.LoadConfig(configDirectory)
			if err != nil {
				return fmt.Errorf("invalid config directory %s: %w", configDirectory, err)
			}
		}

		logger, err := newLogger(VDFConfig.LogFile, debug)
		if err != nil {
			return err
		}

		Engine, err = vdf.NewEngine(VDFConfig.Engine, logger)
		return err
	},
	SilenceUsage: true,
}

func newLogger(logFile string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}

	return cfg.Build()
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configDirectory,
		"config",
		"",
		"config directory (defaults are used when empty)",
	)
	rootCmd.PersistentFlags().StringVar(
		&encoding,
		"encoding",
		"hex",
		"encoding of binary arguments and output: hex or base58",
	)
	rootCmd.PersistentFlags().BoolVar(
		&debug,
		"debug",
		false,
		"enables debug logging",
	)
}
