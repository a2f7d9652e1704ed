package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jumppad-labs/collector-stack/pkg/engine"
)

func newPreviewCmd(e engine.Engine, f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "preview",
		Short:   "Show the changes an update would make",
		Long:    `Show the changes an update would make without creating or modifying any resources`,
		Example: `collector-stack preview --stack dev-aws`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := f.loadStack()
			if err != nil {
				return err
			}

			res, err := e.Preview(cmd.Context(), st)
			if err != nil {
				return err
			}

			printChanges(cmd.OutOrStdout(), res.Changes)
			return nil
		},
	}
}
