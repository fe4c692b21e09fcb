package cloneCommand

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vgm/internal/appConfig"
	"vgm/internal/cacheserver"
	logger "vgm/internal/log"
	"vgm/internal/materialize"
	"vgm/internal/mounter"
	"vgm/internal/transport"
	"vgm/internal/view"
)

// NewCommand wires the clone workflow behind `vgm clone <url> [root]`.
func NewCommand(config *appConfig.AppConfig) *cobra.Command {
	var branch string
	var singleBranch bool
	var cacheServer string
	var noPrefetch bool
	var noMount bool

	cmd := &cobra.Command{
		Use:   "clone <repository-url> [enlistment-root]",
		Short: "Create and populate a new enlistment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userPath := ""
			if len(args) > 1 {
				userPath = args[1]
			}
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("Cannot clone: could not determine the working directory: %v", err)
			}

			override := cacheserver.NoOverride()
			if cmd.Flags().Changed("cache-server") {
				override = cacheserver.OverrideValue(cacheServer)
			}

			opts := Options{
				RemoteURL:    args[0],
				UserPath:     userPath,
				Branch:       branch,
				SingleBranch: singleBranch,
				CacheServer:  override,
				NoPrefetch:   noPrefetch,
				NoMount:      noMount,
				Cwd:          cwd,
			}
			return execute(cmd.Context(), config, opts)
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch to checkout after clone")
	cmd.Flags().BoolVar(&singleBranch, "single-branch", false, "Negotiate refs for only the requested branch")
	cmd.Flags().StringVar(&cacheServer, "cache-server", "", "Cache server URL or friendly name")
	cmd.Flags().BoolVar(&noPrefetch, "no-prefetch", false, "Skip the commit prefetch after clone")
	cmd.Flags().BoolVar(&noMount, "no-mount", false, "Skip mounting the enlistment after clone")

	return cmd
}

func execute(ctx context.Context, config *appConfig.AppConfig, opts Options) error {
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

	client := transport.NewClient(opts.RemoteURL, config.RetryConfig(), model.Attempts)
	orchestrator := NewOrchestrator(
		config,
		client,
		processLocker{},
		materialize.NewCloneHelper("git"),
		newGitPrefetcher(""),
		mounter.New(config.MountTool),
		statusLine,
		os.Stdout,
	)

	res := orchestrator.Run(ctx, opts)
	stopRenderLoop()

	if res.Failed() {
		logger.Log.Errorf("clone failed (%s): %s", res.Kind, res.Message)
		return fmt.Errorf("Cannot clone @ %s: %s", displayRoot(opts), res.Message)
	}
	_, _ = fmt.Fprintln(os.Stdout, res.Message)
	return nil
}

func displayRoot(opts Options) string {
	if opts.UserPath != "" {
		return opts.UserPath
	}
	return opts.Cwd
}
