package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jumppad-labs/collector-stack/pkg/engine"
)

func newUpCmd(e engine.Engine, f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "up",
		Aliases: []string{"apply"},
		Short:   "Create or update the collector stack",
		Long: `Create or update the collector stack. The collector image is built and
pushed to the registry before the container service is rolled out.`,
		Example: `HONEYCOMB_API_KEY=xxx collector-stack up --stack dev-aws`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := f.loadStack()
			if err != nil {
				return err
			}

			res, err := e.Up(cmd.Context(), st)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printChanges(w, res.Changes)

			fmt.Fprintln(w, "")
			fmt.Fprintln(w, successLabel.Render("Stack")+whiteText.Render(st.Name)+grayText.Render(" is up"))
			printOutputs(w, res.Outputs.Values(false), false)

			return nil
		},
	}
}
