package lockserver

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	logger "vgm/internal/log"
	"vgm/internal/status"
)

// Unix socket names hit an OS limit well below PATH_MAX; 104 is the
// smallest limit among supported platforms.
const maxSocketPathLen = 104

const probeTimeout = time.Second

// StatusLine is what the holder answers to any local connection: locks are
// currently being enforced for this root.
const StatusLine = "locked\n"

// Lock is an exclusive, OS-visible binding for one enlistment root. While a
// process holds it, no other process may run a mutating operation against
// that root. The endpoint doubles as an advisory status channel for trusted
// local callers.
type Lock struct {
	root       string
	socketPath string
	listener   net.Listener
	closeOnce  sync.Once
}

// SocketPath derives the endpoint name deterministically from the root path,
// so every process contending for the same root arrives at the same name.
func SocketPath(root string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, filepath.Clean(root))
	return filepath.Join(os.TempDir(), "vgm-"+sanitized+".lock")
}

// Acquire binds the lock endpoint for root. EnlistmentBusy means another
// process holds it; PathTooLongForLock means the derived endpoint name
// exceeds the OS limit, which the user fixes by shortening the path.
func Acquire(root string) (*Lock, status.Result) {
	socketPath := SocketPath(root)
	if len(socketPath) > maxSocketPathLen {
		return nil, status.Failure(status.PathTooLongForLock,
			"the enlistment path %s is too long to derive a lock endpoint; shorten the path", root)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil && errors.Is(err, syscall.EADDRINUSE) {
		if holderAlive(socketPath) {
			return nil, status.Failure(status.EnlistmentBusy,
				"another process is already operating on the enlistment at %s", root)
		}
		// Leftover socket from a process that died without unbinding.
		logger.Log.Debugf("removing stale lock endpoint %s", socketPath)
		if rmErr := os.Remove(socketPath); rmErr != nil {
			return nil, status.Failure(status.EnlistmentBusy,
				"could not reclaim the lock endpoint for %s: %v", root, rmErr)
		}
		listener, err = net.Listen("unix", socketPath)
	}
	if err != nil {
		return nil, status.Failure(status.GenericFailure,
			"could not bind the lock endpoint for %s: %v", root, err)
	}

	lock := &Lock{
		root:       root,
		socketPath: socketPath,
		listener:   listener,
	}
	go lock.serve()
	return lock, status.Success("holding lock for %s", root)
}

func holderAlive(socketPath string) bool {
	conn, err := net.DialTimeout("unix", socketPath, probeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// serve answers advisory status requests until the lock is released.
func (l *Lock) serve() {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte(StatusLine))
		_ = conn.Close()
	}
}

// Close releases the binding. Safe to call more than once; deferred by the
// owning operation so release happens on every exit path.
func (l *Lock) Close() error {
	l.closeOnce.Do(func() {
		if err := l.listener.Close(); err != nil {
			logger.Log.Errorf("Failed to close lock endpoint for %s: %v", l.root, err)
		}
		_ = os.Remove(l.socketPath)
	})
	return nil
}

// Probe reports whether locks are currently being enforced for root.
func Probe(root string) bool {
	return holderAlive(SocketPath(root))
}
