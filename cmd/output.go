package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/jumppad-labs/collector-stack/pkg/engine"
)

func newOutputCmd(e engine.Engine, f *globalFlags) *cobra.Command {
	var jsonFlag bool
	var envFlag bool
	var showSecrets bool

	outputCmd := &cobra.Command{
		Use:   "output [name]",
		Short: "Show the output variables",
		Long:  `Show the output variables of the last update, secret outputs are redacted unless --show-secrets is set`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := f.loadStack()
			if err != nil {
				return err
			}

			out, err := e.Outputs(cmd.Context(), st)
			if err != nil {
				return err
			}

			values := out.Values(showSecrets)

			if len(args) == 1 {
				v, ok := values[args[0]]
				if !ok {
					return fmt.Errorf("output %q not found in stack %s", args[0], st.Name)
				}

				values = map[string]interface{}{args[0]: v}
			}

			w := cmd.OutOrStdout()

			if jsonFlag {
				formatter := prettyjson.Formatter{
					Indent:          2,
					KeyColor:        color.New(color.FgWhite, color.Bold),
					StringColor:     color.New(color.FgGreen, color.Bold),
					BoolColor:       color.New(color.FgGreen, color.Bold),
					NumberColor:     color.New(color.FgGreen, color.Bold),
					NullColor:       color.New(color.FgBlack, color.Bold),
					DisabledColor:   false,
					StringMaxLength: 0,
					Newline:         "\n",
				}

				d, err := formatter.Marshal(values)
				if err != nil {
					return fmt.Errorf("unable to format outputs: %w", err)
				}

				fmt.Fprintf(w, "%s\n", string(d))
				return nil
			}

			printOutputs(w, values, envFlag)
			return nil
		},
	}

	outputCmd.Flags().BoolVarP(&jsonFlag, "json", "", false, "Output the output as JSON")
	outputCmd.Flags().BoolVarP(&envFlag, "env", "", false, "Output the output as environment variables")
	outputCmd.Flags().BoolVarP(&showSecrets, "show-secrets", "", false, "Show the plain text value of secret outputs")

	return outputCmd
}

// printOutputs writes name=value lines sorted by name, with env set the
// names are converted to environment variable names
func printOutputs(w io.Writer, values map[string]interface{}, env bool) {
	names := []string{}
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, n := range names {
		v := fmt.Sprint(values[n])

		if env {
			fmt.Fprintln(w, grayText.Render("export ")+whiteText.Render(envName(n))+grayText.Render("=")+greenIcon.Render(fmt.Sprintf("%q", v)))
			continue
		}

		fmt.Fprintln(w, whiteText.Render(n)+grayText.Render("=")+greenIcon.Render(v))
	}
}

// envName converts collector-url and containerUrl to COLLECTOR_URL and CONTAINER_URL
func envName(n string) string {
	sb := strings.Builder{}
	for i, r := range n {
		switch {
		case r == '-' || r == '.':
			sb.WriteRune('_')
		case r >= 'A' && r <= 'Z' && i > 0:
			sb.WriteRune('_')
			sb.WriteRune(r)
		default:
			sb.WriteString(strings.ToUpper(string(r)))
		}
	}

	return sb.String()
}
