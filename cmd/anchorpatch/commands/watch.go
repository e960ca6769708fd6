package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/cmd/anchorpatch/opts"
	"github.com/walteh/anchorpatch/pkg/watch"
)

// NewWatchCmd creates a new watch command
func NewWatchCmd(o *opts.RootOpts) *cobra.Command {
	var pass opts.PassOpts
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Apply again whenever the config or mapping file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := o.LoadConfig(ctx, pass)
			if err != nil {
				return err
			}

			w, err := watch.New(func(ctx context.Context) error {
				return runPass(ctx, o, pass, false)
			}, []string{cfg.Location(), cfg.Mapping.Path}, watch.WithDebounce(debounce), watch.WithInitialRun())
			if err != nil {
				return errors.Errorf("creating watcher: %w", err)
			}

			zerolog.Ctx(ctx).Debug().Str("config", cfg.Location()).Str("mapping", cfg.Mapping.Path).Msg("watching inputs")
			o.Console.Infof("watching %s and %s", cfg.Location(), cfg.Mapping.Path)

			if err := w.Watch(ctx); err != nil {
				return errors.Errorf("watching: %w", err)
			}
			return nil
		},
	}

	addPassFlags(cmd, &pass)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "how long to wait for more changes before applying")

	return cmd
}
