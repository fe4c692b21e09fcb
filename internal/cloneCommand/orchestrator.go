package cloneCommand

import (
	"context"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"

	"vgm/internal/appConfig"
	"vgm/internal/cacheserver"
	"vgm/internal/enlistment"
	logger "vgm/internal/log"
	"vgm/internal/refs"
	"vgm/internal/status"
	"vgm/internal/version"
	"vgm/internal/view"
)

// Options carries everything the clone workflow needs from the caller.
// Cwd is passed explicitly instead of read from the process.
type Options struct {
	RemoteURL    string
	UserPath     string
	Branch       string
	SingleBranch bool
	CacheServer  cacheserver.Override
	NoPrefetch   bool
	NoMount      bool
	Cwd          string
	GitBin       string
}

// Orchestrator sequences the clone workflow. Every stage returns a Result;
// the first failure short-circuits the rest and its message propagates
// unchanged to the caller.
type Orchestrator struct {
	config       *appConfig.AppConfig
	transport    Transport
	locker       Locker
	materializer Materializer
	prefetcher   Prefetcher
	mounter      Mounter
	statusLine   *view.StatusLine
	out          io.Writer
}

func NewOrchestrator(config *appConfig.AppConfig, transport Transport, locker Locker, materializer Materializer,
	prefetcher Prefetcher, mounter Mounter, statusLine *view.StatusLine, out io.Writer) *Orchestrator {
	return &Orchestrator{
		config:       config,
		transport:    transport,
		locker:       locker,
		materializer: materializer,
		prefetcher:   prefetcher,
		mounter:      mounter,
		statusLine:   statusLine,
		out:          out,
	}
}

func (o *Orchestrator) Run(ctx context.Context, opts Options) status.Result {
	var enl *enlistment.Enlistment
	res := o.stage("Validating enlistment root", func() status.Result {
		var r status.Result
		enl, r = enlistment.Locate(opts.Cwd, opts.UserPath, opts.RemoteURL, opts.GitBin)
		return r
	})
	if res.Failed() {
		return res
	}

	// A blank override is a user mistake; stop before locks and network.
	if opts.CacheServer.IsBlank() {
		return status.Failure(status.BlankCacheServerUrl, "cache server override is blank; either omit it or name a cache server")
	}

	lock, res := o.locker.Acquire(enl.Root)
	if res.Failed() {
		return res
	}
	defer func() {
		if err := lock.Close(); err != nil {
			logger.Log.Errorf("Failed to release enlistment lock: %v", err)
		}
	}()

	res = o.stage("Authenticating", func() status.Result {
		if err := o.transport.RefreshCredentials(ctx); err != nil {
			return status.Failure(status.AuthFailed, "could not refresh credentials: %v", err)
		}
		return status.Success("")
	})
	if res.Failed() {
		return res
	}

	var cache cacheserver.Info
	res = o.stage("Resolving remote configuration", func() status.Result {
		remoteConfig, err := o.transport.QueryConfig(ctx)
		if err != nil {
			return status.Failure(status.GenericFailure, "could not resolve remote configuration: %v", err)
		}
		if r := checkClientVersion(remoteConfig.MinClientVersion); r.Failed() {
			return r
		}
		if remoteConfig.DefaultRing != "" {
			logger.Log.Infof("Remote release ring: %s", remoteConfig.DefaultRing)
		}
		var r status.Result
		cache, r = cacheserver.Resolve(opts.CacheServer, remoteConfig, opts.RemoteURL)
		return r
	})
	if res.Failed() {
		return res
	}
	logger.Log.Infof("Cache server: %s (%s)", cache.Name, cache.URL)

	var gitRefs *refs.GitRefs
	var branch string
	res = o.stage("Negotiating refs", func() status.Result {
		var r status.Result
		gitRefs, branch, r = refs.NewNegotiator(o.transport).Negotiate(ctx, opts.Branch, opts.SingleBranch)
		return r
	})
	if res.Failed() {
		return res
	}

	res = o.stage("Materializing enlistment", func() status.Result {
		return o.materializer.Materialize(ctx, enl, gitRefs, branch, cache)
	})
	if res.Failed() {
		return res
	}

	// The enlistment now has a log directory of its own; later entries
	// belong there.
	if err := logger.RedirectTo(enl.LogDir()); err != nil {
		logger.Log.Warnf("log output stays in the default directory: %v", err)
	}

	o.config.RegisterEnlistment(enl.Root)
	if err := o.config.Save(); err != nil {
		logger.Log.Errorf("Failed to register enlistment %s: %v", enl.Root, err)
	}

	o.runFollowOns(ctx, opts, enl, branch)

	return status.Success("Cloned %s into %s (branch %s, cache server %s)", opts.RemoteURL, enl.Root, branch, cache.Name)
}

// runFollowOns runs prefetch and mount after a successful clone. Their
// failures degrade the outcome to warnings; the clone itself already
// succeeded.
func (o *Orchestrator) runFollowOns(ctx context.Context, opts Options, enl *enlistment.Enlistment, branch string) {
	if opts.NoPrefetch {
		logger.Log.Infof("Commit prefetch suppressed by flag")
	} else {
		res := o.stage("Prefetching commits", func() status.Result {
			return o.prefetcher.PrefetchCommits(ctx, enl, branch)
		})
		if res.Failed() {
			o.warn("Commit prefetch did not complete: %s", res.Message)
		}
	}

	if opts.NoMount {
		_, _ = fmt.Fprintf(o.out, "Mount suppressed; run 'vgm mount %s' to activate the enlistment later\n", enl.Root)
		return
	}
	res := o.stage("Mounting enlistment", func() status.Result {
		return o.mounter.Mount(ctx, enl.Root)
	})
	if res.Failed() {
		o.warn("Mount did not complete: %s. Run 'vgm mount %s' to mount manually.", res.Message, enl.Root)
	}
}

func (o *Orchestrator) stage(name string, fn func() status.Result) status.Result {
	o.statusLine.Begin(name)
	res := fn()
	o.statusLine.End(res.Failed())
	if res.Failed() {
		logger.Log.Errorf("%s failed: %s", name, res.Message)
	} else {
		logger.Log.Infof("%s: ok", name)
	}
	return res
}

func (o *Orchestrator) warn(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logger.Log.Warn(message)
	_, _ = fmt.Fprintf(o.out, "Warning: %s\n", message)
}

func checkClientVersion(minClientVersion string) status.Result {
	if minClientVersion == "" {
		return status.Success("")
	}
	minimum, err := semver.NewVersion(minClientVersion)
	if err != nil {
		logger.Log.Warnf("Remote advertised unparsable minimum client version %q: %v", minClientVersion, err)
		return status.Success("")
	}
	if version.CurrentSemver().LessThan(minimum) {
		return status.Failure(status.GenericFailure,
			"this client (version %s) is older than the remote's minimum supported version %s; run 'vgm upgrade' first", version.Current, minimum)
	}
	return status.Success("")
}
