package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jumppad-labs/collector-stack/pkg/clients/logger"
	"github.com/jumppad-labs/collector-stack/pkg/config"
	"github.com/jumppad-labs/collector-stack/pkg/engine"
	"github.com/jumppad-labs/collector-stack/pkg/utils"
)

var version string // set by build process
var date string    // set by build process
var commit string  // set by build process

// globalFlags are shared by every command
type globalFlags struct {
	configFile string
	stack      string

	log logger.Logger
}

// loadStack reads the settings file and selects the stack to operate on
func (f *globalFlags) loadStack() (*config.Stack, error) {
	f.log.Debug("Loading settings", "file", f.configFile, "stack", f.stack)

	s, err := config.Parse(f.configFile)
	if err != nil {
		return nil, err
	}

	return s.Find(f.stack)
}

func newRootCmd(e engine.Engine, l logger.Logger) *cobra.Command {
	f := &globalFlags{log: l}

	rootCmd := &cobra.Command{
		Use:   "collector-stack",
		Short: "Deploy a secure OpenTelemetry collector to Azure or AWS",
		Long: `collector-stack builds the OpenTelemetry collector image, pushes it to a
private registry and runs it on Azure Container Apps or AWS Fargate with the
Honeycomb API key stored as a secret`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", utils.DefaultSettingsFile, "Path to the settings file")
	rootCmd.PersistentFlags().StringVarP(&f.stack, "stack", "s", "", "Name of the stack, may be omitted when the settings define a single stack")

	rootCmd.AddCommand(newPreviewCmd(e, f))
	rootCmd.AddCommand(newUpCmd(e, f))
	rootCmd.AddCommand(newDestroyCmd(e, f))
	rootCmd.AddCommand(newOutputCmd(e, f))
	rootCmd.AddCommand(newStacksCmd(f))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func createLogger() logger.Logger {
	// set the log level
	if lev := os.Getenv("LOG_LEVEL"); lev != "" {
		return logger.NewLogger(os.Stdout, lev)
	}

	return logger.NewLogger(os.Stdout, logger.LogLevelInfo)
}

// Execute the root command
func Execute(v, c, d string) error {
	version = v
	commit = c
	date = d

	l := createLogger()
	rootCmd := newRootCmd(engine.New(l), l)
	rootCmd.SilenceErrors = true

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println("")
		fmt.Println(errorLabel.Render("Error:") + err.Error())
	}

	return err
}
