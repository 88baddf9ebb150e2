package app

import (
	"fmt"
	"runtime/debug"
)

// GitCommit may be set with -ldflags "-X github.com/Emmo00/agora/app.GitCommit=<sha>".
// When unset it is taken from the VCS stamp go build embeds in the binary.
var (
	GitCommit string
)

const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

var Version = func() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}()

func init() {
	if GitCommit != "" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		GitCommit = vcsRevision(info.Settings)
	}
}

func vcsRevision(settings []debug.BuildSetting) string {
	for _, s := range settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

func VersionWithCommit(gitCommit string) string {
	vsn := Version
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	return vsn
}
