package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	app_config "github.com/Emmo00/agora/config"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

func TestStartIndexerStopsOnCancel(t *testing.T) {
	home := t.TempDir()
	cfg := app_config.DefaultConfig(home)
	cfg.App.IndexerDB = filepath.Join(home, "indexer.db")
	cfg.App.IndexerListen = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done, err := startIndexer(ctx, cfg, cmtlog.NewNopLogger())
	require.NoError(t, err)
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("indexer did not stop")
	}
}
