package cmd

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jumppad-labs/collector-stack/pkg/config"
)

func newStacksCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stacks",
		Short: "List the stacks defined in the settings file",
		Long:  `List the stacks defined in the settings file`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Parse(f.configFile)
			if err != nil {
				return err
			}

			table := uitable.New()
			table.MaxColWidth = 60
			table.AddRow("NAME", "VARIANT", "PROJECT", "REGION", "API KEY ENV")

			for _, st := range s.Stacks {
				table.AddRow(st.Name, st.Variant, st.Project, st.DeploymentRegion(), st.APIKeyEnv)
			}

			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
