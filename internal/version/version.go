package version

import "github.com/Masterminds/semver/v3"

// Current is the version of this build, advertised to the remote for
// compatibility checks and compared against the upgrade feed.
const Current = "1.4.0"

func CurrentSemver() *semver.Version {
	return semver.MustParse(Current)
}
