package commands

import (
	"github.com/spf13/cobra"

	"github.com/walteh/anchorpatch/cmd/anchorpatch/opts"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var pass opts.PassOpts

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report what apply would change without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPass(cmd.Context(), o, pass, true)
		},
	}

	addPassFlags(cmd, &pass)

	return cmd
}
