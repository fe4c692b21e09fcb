package upgradeCommand

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"vgm/internal/status"
)

// PrerunChecker gates mutating system state and owns the mount surface over
// every known enlistment. The orchestrator never interprets its failure
// causes, only propagates messages.
type PrerunChecker interface {
	RunPreflightChecks(ctx context.Context) status.Result
	UnmountAll(ctx context.Context) status.Result
	MountAll(ctx context.Context) status.Result
}

// Upgrader is the platform-specific upgrade capability.
type Upgrader interface {
	Initialize(ctx context.Context) status.Result
	// CanProceed reports whether checking for upgrades is allowed under the
	// current configuration. Not-allowed is a recognized no-op with an
	// informational message, not an error; err is reserved for blocking
	// faults.
	CanProceed() (allowed bool, message string, err error)
	// CheckNewerVersion returns nil when no newer version exists.
	CheckNewerVersion(ctx context.Context) (*semver.Version, status.Result)
	Download(ctx context.Context, newVersion *semver.Version) status.Result
	RunInstaller(ctx context.Context, progress func(message string)) status.Result
	Cleanup(ctx context.Context) status.Result
}
