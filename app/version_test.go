package app

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionWithCommit(t *testing.T) {
	require.Equal(t, "0.1.0", Version)
	require.Equal(t, "0.1.0", VersionWithCommit(""))
	require.Equal(t, "0.1.0", VersionWithCommit("abc"))
	require.Equal(t, "0.1.0-0123abcd", VersionWithCommit("0123abcdef456789"))
}

func TestVcsRevision(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "-compiler", Value: "gc"},
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123abcdef456789"},
	}
	require.Equal(t, "0123abcdef456789", vcsRevision(settings))
	require.Empty(t, vcsRevision(settings[:2]))
}
