package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/anchorpatch/cmd/anchorpatch/commands"
	"github.com/walteh/anchorpatch/cmd/anchorpatch/opts"
	"github.com/walteh/anchorpatch/pkg/log"
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "anchorpatch.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// logLevel picks the zerolog level from flags
func logLevel(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

// NewRootCmd creates the anchorpatch command tree writing to out and errOut
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	o := &opts.RootOpts{Out: out}

	cmd := &cobra.Command{
		Use:           "anchorpatch",
		Short:         "Patch placeholder links in generated static documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logLevel(o.Debug)
			logger := zerolog.New(zerolog.ConsoleWriter{Out: errOut}).Level(level).With().Timestamp().Logger()

			o.Console = log.New(out, level)
			ctx := logger.WithContext(cmd.Context())
			cmd.SetContext(log.NewContext(ctx, o.Console))
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewApplyCmd(o),
		commands.NewCheckCmd(o),
		commands.NewWatchCmd(o),
		newVersionCmd(),
	)

	return cmd
}

func newDefaultRootCmd() *cobra.Command {
	return NewRootCmd(os.Stdout, os.Stderr)
}
