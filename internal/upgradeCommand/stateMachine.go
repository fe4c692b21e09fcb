package upgradeCommand

import (
	"context"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"

	logger "vgm/internal/log"
	"vgm/internal/status"
	"vgm/internal/view"
)

// Phase is one gated step of the upgrade sequence. Phases run in strict
// forward order; each one's success gates the next.
type Phase int

const (
	PhaseInitialize Phase = iota
	PhaseCheckAvailable
	PhasePreflightChecks
	PhaseDownload
	PhaseUnmountAll
	PhaseInstall
	PhaseMountAll
	PhaseCleanup
)

var phaseNames = map[Phase]string{
	PhaseInitialize:      "Initializing upgrade",
	PhaseCheckAvailable:  "Checking for a newer version",
	PhasePreflightChecks: "Running pre-flight checks",
	PhaseDownload:        "Downloading",
	PhaseUnmountAll:      "Unmounting enlistments",
	PhaseInstall:         "Installing",
	PhaseMountAll:        "Remounting enlistments",
	PhaseCleanup:         "Cleaning up",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Orchestrator drives the upgrade sequence. mountOwed is set only by a
// successful UnmountAll and is the sole gate for attempting MountAll, so the
// machine never remounts what it never unmounted.
type Orchestrator struct {
	upgrader   Upgrader
	checker    PrerunChecker
	statusLine *view.StatusLine
	out        io.Writer
	dryRun     bool

	mountOwed bool
}

func NewOrchestrator(upgrader Upgrader, checker PrerunChecker, statusLine *view.StatusLine, out io.Writer, dryRun bool) *Orchestrator {
	return &Orchestrator{
		upgrader:   upgrader,
		checker:    checker,
		statusLine: statusLine,
		out:        out,
		dryRun:     dryRun,
	}
}

// Run steps the machine from Initialize through Cleanup. An Initialize
// failure is terminal with nothing to restore; after that, mount
// restoration and cleanup are guaranteed on every exit path via defer,
// whatever the phases in between decide.
func (o *Orchestrator) Run(ctx context.Context) status.Result {
	if res := o.phase(PhaseInitialize, func() status.Result { return o.upgrader.Initialize(ctx) }); res.Failed() {
		return res
	}

	defer func() {
		o.restoreMounts(ctx)
		o.cleanup(ctx)
	}()

	return o.runGatedPhases(ctx)
}

func (o *Orchestrator) runGatedPhases(ctx context.Context) status.Result {
	allowed, message, err := o.upgrader.CanProceed()
	if err != nil {
		return status.FromError(status.GenericFailure, err)
	}
	if !allowed {
		// A recognized no-op, not a failure: the configuration says not to
		// check here (unsupported install method and the like).
		return status.Success("%s", message)
	}

	var newVersion *semver.Version
	res := o.phase(PhaseCheckAvailable, func() status.Result {
		v, r := o.upgrader.CheckNewerVersion(ctx)
		newVersion = v
		return r
	})
	if res.Failed() {
		return res
	}
	if newVersion == nil {
		return status.Success("Upgrade is not available")
	}
	if o.dryRun {
		return status.Success("Upgrade to version %s is available", newVersion)
	}

	if res := o.phase(PhasePreflightChecks, func() status.Result { return o.checker.RunPreflightChecks(ctx) }); res.Failed() {
		return res
	}

	if res := o.phase(PhaseDownload, func() status.Result { return o.upgrader.Download(ctx, newVersion) }); res.Failed() {
		return res
	}

	if res := o.phase(PhaseUnmountAll, func() status.Result { return o.checker.UnmountAll(ctx) }); res.Failed() {
		return res
	}
	o.mountOwed = true

	res = o.phase(PhaseInstall, func() status.Result {
		return o.upgrader.RunInstaller(ctx, func(message string) {
			logger.Log.Infof("installer: %s", message)
		})
	})
	if res.Failed() {
		return res
	}

	return status.Success("Upgraded to version %s", newVersion)
}

// restoreMounts attempts MountAll whenever UnmountAll previously succeeded,
// regardless of how the phases after it fared. Its failure is a warning,
// never an escalation: the upgrade itself may already have succeeded.
func (o *Orchestrator) restoreMounts(ctx context.Context) {
	if !o.mountOwed {
		return
	}
	res := o.phase(PhaseMountAll, func() status.Result { return o.checker.MountAll(ctx) })
	if res.Failed() {
		warning := fmt.Sprintf("Warning: could not remount enlistments: %s. Run 'vgm mount' on each enlistment manually.", res.Message)
		logger.Log.Warn(warning)
		_, _ = fmt.Fprintln(o.out, warning)
	}
}

func (o *Orchestrator) cleanup(ctx context.Context) {
	res := o.phase(PhaseCleanup, func() status.Result { return o.upgrader.Cleanup(ctx) })
	if res.Failed() {
		logger.Log.Errorf("cleanup failed: %s", res.Message)
	}
}

func (o *Orchestrator) phase(p Phase, fn func() status.Result) status.Result {
	o.statusLine.Begin(p.String())
	res := fn()
	o.statusLine.End(res.Failed())
	if res.Failed() {
		logger.Log.Errorf("%s failed: %s", p, res.Message)
	} else {
		logger.Log.Infof("%s: ok", p)
	}
	return res
}
