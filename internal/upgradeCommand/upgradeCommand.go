package upgradeCommand

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vgm/internal/appConfig"
	logger "vgm/internal/log"
	"vgm/internal/mounter"
	"vgm/internal/version"
	"vgm/internal/view"
)

// NewCommand wires the upgrade state machine behind `vgm upgrade`.
func NewCommand(config *appConfig.AppConfig) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade vgm to the newest released version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), config, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only check whether an upgrade is available")
	return cmd
}

func execute(ctx context.Context, config *appConfig.AppConfig, dryRun bool) error {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	model := view.NewStatusLineModel()
	statusLine := view.NewStatusLine(model, isTTY, os.Stdout)

	renderCtx, stopRenderLoop := context.WithCancel(ctx)
	defer stopRenderLoop()
	if isTTY {
		errorModel := view.NewErrorViewModel(logger.GetLogFilePath())
		logger.ErrorsTo(errorModel.ErrorChannel)
		compositeView := view.NewCompositeView([]view.View{view.NewStatusLineView(model, os.Stdout)})
		compositeView.AddView(view.NewErrorView(errorModel, os.Stdout))
		compositeView.AddFooter(view.NewTimeElapsedView(time.Now(), os.Stdout, time.Since))
		go view.StartTTYRenderLoop(compositeView, os.Stdout, renderCtx, os.Stdout)
	}

	installMethod := config.InstallMethod
	if installMethod == "" {
		installMethod = InstallMethodFeed
	}
	upgrader := NewFeedUpgrader(config.UpgradeFeedURL, installMethod, version.CurrentSemver(), config.RetryConfig())
	checker := NewEnlistmentChecker(config.Enlistments, mounter.New(config.MountTool))
	orchestrator := NewOrchestrator(upgrader, checker, statusLine, os.Stdout, dryRun)

	res := orchestrator.Run(ctx)
	stopRenderLoop()

	if res.Failed() {
		logger.Log.Errorf("upgrade failed (%s): %s", res.Kind, res.Message)
		return fmt.Errorf("Cannot upgrade vgm: %s", res.Message)
	}
	_, _ = fmt.Fprintln(os.Stdout, res.Message)
	return nil
}
