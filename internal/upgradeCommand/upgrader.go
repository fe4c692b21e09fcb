package upgradeCommand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	logger "vgm/internal/log"
	"vgm/internal/retry"
	"vgm/internal/sh"
	"vgm/internal/status"
)

// InstallMethodFeed is the only install method the feed upgrader supports;
// anything else makes upgrade checking a recognized no-op.
const InstallMethodFeed = "feed"

// feedManifest is the upgrade feed's answer: the newest released version
// and where its installer payload lives.
type feedManifest struct {
	Version string `json:"version"`
	URL     string `json:"url"`
}

// FeedUpgrader implements the Upgrader capability against a JSON upgrade
// feed. The payload is downloaded into a dedicated temp directory that
// Cleanup removes.
type FeedUpgrader struct {
	feedURL       string
	installMethod string
	current       *semver.Version
	retry         retry.Config
	httpClient    *http.Client

	downloadDir string
	payloadPath string
}

func NewFeedUpgrader(feedURL string, installMethod string, current *semver.Version, retryConfig retry.Config) *FeedUpgrader {
	return &FeedUpgrader{
		feedURL:       feedURL,
		installMethod: installMethod,
		current:       current,
		retry:         retryConfig,
		httpClient:    &http.Client{Timeout: 5 * time.Minute},
	}
}

func (u *FeedUpgrader) Initialize(_ context.Context) status.Result {
	downloadDir, err := os.MkdirTemp("", "vgm-upgrade-")
	if err != nil {
		return status.Failure(status.GenericFailure, "could not create a download directory: %v", err)
	}
	u.downloadDir = downloadDir
	return status.Success("")
}

func (u *FeedUpgrader) CanProceed() (bool, string, error) {
	if u.installMethod != InstallMethodFeed {
		return false, fmt.Sprintf("Upgrade checking is not supported for install method %q; upgrade through your package manager instead", u.installMethod), nil
	}
	if u.feedURL == "" {
		return false, "", errors.New("install method is \"feed\" but no upgrade feed URL is configured")
	}
	return true, "", nil
}

func (u *FeedUpgrader) CheckNewerVersion(ctx context.Context) (*semver.Version, status.Result) {
	var manifest feedManifest
	err := u.retry.Do(ctx, "query upgrade feed", nil, func(ctx context.Context) error {
		return u.fetchManifest(ctx, &manifest)
	})
	if err != nil {
		return nil, status.Failure(status.GenericFailure, "could not query the upgrade feed: %v", err)
	}

	advertised, err := semver.NewVersion(manifest.Version)
	if err != nil {
		return nil, status.Failure(status.GenericFailure, "the upgrade feed advertised an unparsable version %q: %v", manifest.Version, err)
	}
	if !advertised.GreaterThan(u.current) {
		logger.Log.Infof("Feed version %s is not newer than current %s", advertised, u.current)
		return nil, status.Success("")
	}
	u.payloadPath = filepath.Join(u.downloadDir, fmt.Sprintf("vgm-installer-%s", advertised))
	return advertised, status.Success("")
}

func (u *FeedUpgrader) fetchManifest(ctx context.Context, manifest *feedManifest) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.feedURL, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("upgrade feed responded with status: %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return retry.Permanent(statusErr)
		}
		return statusErr
	}
	if err := json.NewDecoder(resp.Body).Decode(manifest); err != nil {
		return retry.Permanent(fmt.Errorf("could not decode the upgrade feed: %w", err))
	}
	return nil
}

func (u *FeedUpgrader) Download(ctx context.Context, newVersion *semver.Version) status.Result {
	var manifest feedManifest
	if err := u.fetchManifest(ctx, &manifest); err != nil {
		return status.Failure(status.GenericFailure, "could not re-read the upgrade feed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifest.URL, nil)
	if err != nil {
		return status.Failure(status.GenericFailure, "bad payload URL %q: %v", manifest.URL, err)
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return status.Failure(status.GenericFailure, "could not download version %s: %v", newVersion, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return status.Failure(status.GenericFailure, "payload download failed with status: %s", resp.Status)
	}

	file, err := os.OpenFile(u.payloadPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return status.Failure(status.GenericFailure, "could not create %s: %v", u.payloadPath, err)
	}
	defer file.Close()
	if _, err := io.Copy(file, resp.Body); err != nil {
		return status.Failure(status.GenericFailure, "could not write the installer payload: %v", err)
	}
	logger.Log.Infof("Downloaded installer for %s to %s", newVersion, u.payloadPath)
	return status.Success("")
}

func (u *FeedUpgrader) RunInstaller(ctx context.Context, progress func(message string)) status.Result {
	progress("running installer")
	out, err := sh.ExecuteShellCommand(ctx, sh.DirectoryPath(u.downloadDir), sh.ShellCommand(u.payloadPath))
	if err != nil {
		return status.Failure(status.GenericFailure, "installer failed: %v", err)
	}
	if out != "" {
		progress(out)
	}
	return status.Success("")
}

func (u *FeedUpgrader) Cleanup(_ context.Context) status.Result {
	if u.downloadDir == "" {
		return status.Success("")
	}
	if err := os.RemoveAll(u.downloadDir); err != nil {
		return status.Failure(status.GenericFailure, "could not remove %s: %v", u.downloadDir, err)
	}
	return status.Success("")
}
