package commands

import (
	"context"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/cmd/anchorpatch/opts"
	"github.com/walteh/anchorpatch/pkg/report"
	"github.com/walteh/anchorpatch/pkg/runner"
)

func addPassFlags(cmd *cobra.Command, pass *opts.PassOpts) {
	cmd.Flags().StringVar(&pass.Mapping, "mapping", "", "mapping file path (overrides the config)")
	cmd.Flags().StringVar(&pass.Root, "root", "", "corpus root directory (overrides the config)")
	cmd.Flags().StringSliceVar(&pass.Only, "only", nil, "only patch document ids matching these globs")
}

// runPass performs one pass and prints its report. The error is non-nil
// when the config can't be loaded, the mapping precondition failed or the
// pass was interrupted.
func runPass(ctx context.Context, o *opts.RootOpts, pass opts.PassOpts, dryRun bool) error {
	cfg, err := o.LoadConfig(ctx, pass)
	if err != nil {
		return err
	}

	verb := "patching documents"
	if dryRun {
		verb = "checking documents (dry run)"
	}
	o.Console.Header(verb)

	r, err := runner.New(runner.Options{
		Config:  cfg,
		DryRun:  dryRun,
		Only:    pass.Only,
		Console: o.Console,
	})
	if err != nil {
		return errors.Errorf("creating runner: %w", err)
	}

	emitter, runErr := r.Run(ctx)
	o.Console.LogNewline()
	if err := emitter.Render(o.Out); err != nil {
		return err
	}
	if emitter.ExitCode() != 0 {
		return errors.Errorf("run aborted: %w", emitter.Precondition())
	}
	if runErr != nil && report.Classify(runErr).Fatal() {
		return runErr
	}

	s := emitter.Summary()
	switch {
	case s.Failed > 0 || s.RunFailures > 0:
		o.Console.Warningf("%d document(s) could not be processed, %d other problem(s)", s.Failed, s.RunFailures)
	case runErr != nil:
		o.Console.Warningf("%s", runErr)
	case dryRun:
		o.Console.Successf("%d document(s) would change", s.Changed)
	default:
		o.Console.Successf("%d document(s) written", s.Persisted)
	}
	return nil
}
