package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vgm/internal/appConfig"
	"vgm/internal/cloneCommand"
	"vgm/internal/color"
	logger "vgm/internal/log"
	"vgm/internal/upgradeCommand"
	"vgm/internal/version"
)

func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain keeps os.Exit out of the path of deferred cleanup and lets the
// top-level recover turn a fault into an ordinary failure exit.
func runMain(args []string) (exitCode int) {
	defer func() {
		if fault := recover(); fault != nil {
			fmt.Printf("%s %v\n", color.FgRed("vgm hit an unexpected fault:"), fault)
			fmt.Printf("Details may be in the log: %s\n", logger.GetLogFilePath())
			exitCode = 1
		}
	}()

	config, err := appConfig.Load()
	if err != nil {
		fmt.Printf("%s %v\n", color.FgRed("Cannot load configuration:"), err)
		return 1
	}

	cmd := newRootCommand(config)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Println(color.FgRed(err.Error()))
		if logPath := logger.GetLogFilePath(); logPath != "" {
			fmt.Printf("Details in the log: %s\n", logPath)
		}
		return 1
	}
	return 0
}

func newRootCommand(config *appConfig.AppConfig) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "vgm",
		Short:   "Manage virtualized git enlistments",
		Version: version.Current,
		// Failures already carry their cause; cobra's own reporting
		// would print them a second time.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.InitLogger(logger.DefaultLogDir(), cmd.Name(), verbose)
		},
	}
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print verbose output")

	cmd.AddCommand(cloneCommand.NewCommand(config))
	cmd.AddCommand(upgradeCommand.NewCommand(config))
	return cmd
}
