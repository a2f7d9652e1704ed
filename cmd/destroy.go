package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jumppad-labs/collector-stack/pkg/engine"
)

func newDestroyCmd(e engine.Engine, f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "destroy",
		Aliases: []string{"down"},
		Short:   "Destroy the collector stack",
		Long:    `Destroy all the resources of the collector stack including the registry and its images`,
		Example: `collector-stack destroy --stack dev-aws`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := f.loadStack()
			if err != nil {
				return err
			}

			res, err := e.Destroy(cmd.Context(), st)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printChanges(w, res.Changes)
			fmt.Fprintln(w, successLabel.Render("Stack")+whiteText.Render(st.Name)+grayText.Render(" destroyed"))

			return nil
		},
	}
}
