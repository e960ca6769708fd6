package commands

import (
	"github.com/spf13/cobra"

	"github.com/walteh/anchorpatch/cmd/anchorpatch/opts"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(o *opts.RootOpts) *cobra.Command {
	var pass opts.PassOpts
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Patch placeholders in the configured documents",
		Long: `Apply resolves every configured operation against the mapping file.
It will:
1. Load the mapping and stop if no value is configured
2. Patch each document in order, one operation at a time
3. Write documents that changed, atomically
4. Print a report of every operation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPass(cmd.Context(), o, pass, dryRun)
		},
	}

	addPassFlags(cmd, &pass)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")

	return cmd
}
