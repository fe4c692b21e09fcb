package cacheserver

import (
	"strings"

	"github.com/samber/lo"

	"vgm/internal/status"
	"vgm/internal/transport"
)

// Info is a resolved cache-server indirection: object fetches go to URL
// instead of the origin remote. Resolved per operation, never persisted.
type Info struct {
	Name string
	URL  string
}

const (
	userDefinedName = "user-defined"
	originName      = "origin"
)

// Override carries the user's cache-server input and remembers whether it
// was supplied at all. An unset override and a set-but-blank one take
// different paths: unset means "use the remote's default", blank is almost
// certainly a typo and gets rejected before any network call.
type Override struct {
	set   bool
	value string
}

func NoOverride() Override {
	return Override{}
}

func OverrideValue(value string) Override {
	return Override{set: true, value: value}
}

func (o Override) IsSet() bool {
	return o.set
}

func (o Override) IsBlank() bool {
	return o.set && strings.TrimSpace(o.value) == ""
}

func (o Override) Value() string {
	return o.value
}

// Resolve turns a user-supplied URL or friendly name, or nothing, into a
// cache-server target. An explicitly requested name that cannot be resolved
// is an error; it never silently falls back to origin.
func Resolve(override Override, remote *transport.RemoteConfig, originURL string) (Info, status.Result) {
	if override.IsBlank() {
		return Info{}, status.Failure(status.BlankCacheServerUrl, "cache server override is blank; either omit it or name a cache server")
	}

	if override.IsSet() {
		value := strings.TrimSpace(override.Value())
		if strings.Contains(value, "://") {
			return Info{Name: userDefinedName, URL: value}, status.Success("using cache server %s", value)
		}
		entry, found := lo.Find(remote.CacheServers, func(e transport.CacheServerEntry) bool {
			return strings.EqualFold(e.Name, value)
		})
		if !found {
			return Info{}, status.Failure(status.UnknownCacheServer, "the remote does not advertise a cache server named %q", value)
		}
		return Info{Name: entry.Name, URL: entry.URL}, status.Success("using cache server %s", entry.Name)
	}

	entry, found := lo.Find(remote.CacheServers, func(e transport.CacheServerEntry) bool {
		return e.GlobalDefault
	})
	if found {
		return Info{Name: entry.Name, URL: entry.URL}, status.Success("using default cache server %s", entry.Name)
	}

	// Nothing requested and nothing advertised: origin serves objects too.
	return Info{Name: originName, URL: originURL}, status.Success("no cache server advertised; using origin")
}
