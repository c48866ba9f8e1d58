package context

import (
	"fmt"
	"runtime/debug"
)

// VersionInfo is the build information of the running binary.
type VersionInfo struct {
	Semantic string
	Commit   string
	Dirty    bool
}

// GetVersion returns the version information embedded by the Go toolchain.
// All fields are empty if the binary was built without it.
func GetVersion() *VersionInfo {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return &VersionInfo{}
	}

	v := &VersionInfo{Semantic: bi.Main.Version}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Commit = s.Value
		case "vcs.modified":
			v.Dirty = s.Value == "true"
		}
	}

	return v
}

func (v *VersionInfo) String() string {
	semver := v.Semantic
	if semver == "" || semver == "(devel)" {
		semver = "dev"
	}
	if v.Commit == "" {
		return semver
	}

	commit := v.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if v.Dirty {
		commit += "-dirty"
	}

	return fmt.Sprintf("%s (%s)", semver, commit)
}
