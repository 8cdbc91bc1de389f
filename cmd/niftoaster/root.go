package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nif-optimizer/internal/config"
	"nif-optimizer/internal/logger"
)

type rootFlags struct {
	configFile string
	log        logger.Options
	cfg        config.Flags
	cutoff     float64
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "niftoaster",
		Short:         "Optimize and fix scene graph files",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(f.log)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "path to a YAML config file")
	pf.BoolVarP(&f.log.Verbose, "verbose", "v", false, "log debug messages")
	pf.BoolVarP(&f.log.Quiet, "quiet", "q", false, "only log warnings and errors")
	pf.BoolVar(&f.log.DisableColor, "no-color", false, "disable coloured log levels")
	pf.BoolVar(&f.log.JSON, "json-log", false, "log JSON records")
	pf.StringVar(&f.log.LogDir, "log-dir", "", "also write rotated log files to this directory")

	cmd.AddCommand(newOptimizeCmd(f), newCastCmd(f), newSpellsCmd())
	return cmd
}

// load reads the config file, if any, and applies the command line on top.
func (f *rootFlags) load() (config.Config, error) {
	var cfg config.Config
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return cfg, err
		}
		logrus.WithField("config", f.configFile).Debug("config loaded")
	}
	cfg.Resolve(f.cfg)
	return cfg, nil
}
