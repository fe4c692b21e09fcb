package mounter

import (
	"context"
	"fmt"

	logger "vgm/internal/log"
	"vgm/internal/sh"
	"vgm/internal/status"
)

// DefaultTool is the projection-layer helper binary. The filesystem driver
// behind it is not vgm's concern; vgm only asks it to activate or
// deactivate the projection for a root.
const DefaultTool = "vgmfs"

type Helper struct {
	toolBin string
}

func New(toolBin string) *Helper {
	if toolBin == "" {
		toolBin = DefaultTool
	}
	return &Helper{toolBin: toolBin}
}

// Mount activates the virtual projection for the enlistment at root.
func (h *Helper) Mount(ctx context.Context, root string) status.Result {
	return h.run(ctx, "mount", root)
}

// Unmount deactivates the projection for the enlistment at root.
func (h *Helper) Unmount(ctx context.Context, root string) status.Result {
	return h.run(ctx, "unmount", root)
}

func (h *Helper) run(ctx context.Context, verb string, root string) status.Result {
	logger.Log.Infof("%s %s %s", h.toolBin, verb, root)
	out, err := sh.ExecuteShellCommand(ctx, sh.DirectoryPath("."), sh.ShellCommand(fmt.Sprintf("%s %s %q", h.toolBin, verb, root)))
	if err != nil {
		return status.Failure(status.GenericFailure, "could not %s enlistment at %s: %v", verb, root, err)
	}
	if out != "" {
		logger.Log.Debugf("%s output: %s", h.toolBin, out)
	}
	return status.Success("%sed enlistment at %s", verb, root)
}
