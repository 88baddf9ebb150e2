package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Emmo00/agora/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestWriteConfigFiles(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	cfg.App.IndexerEnabled = true
	cfg.App.IndexerListen = "127.0.0.1:9999"
	require.NoError(t, WriteConfigFiles(home, cfg))

	require.FileExists(t, filepath.Join(home, "config", "config.toml"))

	v := viper.New()
	v.SetConfigFile(filepath.Join(home, "config", AppConfigFile))
	require.NoError(t, v.ReadInConfig())
	got := DefaultAgoraAppConfig(home)
	require.NoError(t, v.UnmarshalKey("app", got))
	require.Equal(t, cfg.App, got)
	require.Equal(t, types.DefaultVoteTemplate.Hex(), got.VoteTemplate)
}

func TestIndexerDBPath(t *testing.T) {
	cfg := DefaultAgoraAppConfig("/srv/agora")
	require.Equal(t, "/srv/agora/data/indexer.db", cfg.IndexerDBPath())
	require.Equal(t, "/srv/agora/data", cfg.DataDir())

	cfg.IndexerDB = "/var/lib/indexer.db"
	require.Equal(t, "/var/lib/indexer.db", cfg.IndexerDBPath())
}

func TestInitializeOwner(t *testing.T) {
	home := t.TempDir()
	first, err := InitializeOwner(home)
	require.NoError(t, err)
	second, err := InitializeOwner(home)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.NoError(t, os.WriteFile(OwnerKeyPath(home), []byte("zz"), 0o600))
	_, err = InitializeOwner(home)
	require.Error(t, err)
}
