// Package cmd implements the railplan command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/railplan/infra/logger"
)

type rootOptions struct {
	cfgPath  string
	logLevel string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "railplan",
		Short:         "Station work plan solver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.SetLevel(opts.logLevel)
		},
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "config.yaml", "configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newPlanCmd(),
		newReplanCmd(),
		newValidateCmd(),
		newGraphCmd(),
		newHistoryCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// Execute runs the CLI.
func Execute() error { return NewRootCmd().Execute() }
