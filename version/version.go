// Package version holds the process build identity. The variables are
// populated once at link time and never change at run time; handlers receive
// the composed string by injection so tests can pin a deterministic value.
package version

// Injected via -ldflags at build time, e.g.
//
//	go build -ldflags "-X github.com/jacek-casper/casper-node/version.GitCommit=$(git rev-parse HEAD)"
var (
	// Semver is the package version.
	Semver = "2.0.0"
	// GitCommit is the source revision the binary was built from.
	GitCommit = ""
	// BuildProfile names the build configuration, e.g. "release".
	BuildProfile = ""
)

// String composes the build-version string reported in status responses:
// the semver, an optional abbreviated revision, and an optional profile
// suffix.
func String() string {
	out := Semver
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		out += "-" + commit
	}
	if BuildProfile != "" {
		out += "@" + BuildProfile
	}
	return out
}
