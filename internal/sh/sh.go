package sh

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type DirectoryPath string
type ShellCommand string

// ExecuteShellCommand runs a command through the shell in the given
// directory. Stderr from a failed command is folded into the returned error
// so orchestrators can propagate a readable cause.
func ExecuteShellCommand(ctx context.Context, cwd DirectoryPath, command ShellCommand) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", string(command))
	cmd.Dir = string(cwd)
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		return "", withStderr(err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ExecuteGit runs the given git binary with args in the given directory.
func ExecuteGit(ctx context.Context, gitBin string, cwd DirectoryPath, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, gitBin, args...)
	cmd.Dir = string(cwd)
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), withStderr(err))
	}
	return strings.TrimSpace(string(out)), nil
}

func withStderr(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		if stderr != "" {
			return fmt.Errorf("%w: %s", err, stderr)
		}
	}
	return err
}
