package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/Emmo00/agora/app"
	app_config "github.com/Emmo00/agora/config"
	"github.com/Emmo00/agora/indexer"
	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	nm "github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var homeDir string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the agora node",
	Args:  cobra.ExactArgs(0),
	RunE:  startRun,
}

func init() {
	homeFlag(startCmd, &homeDir)
}

// loadConfig reads config.toml and merges app.toml over the defaults.
func loadConfig(home string) (*app_config.Config, error) {
	appConfig := &app_config.Config{
		Config: app_config.DefaultAgoraCometConfig(),
		App:    app_config.DefaultAgoraAppConfig(home),
	}
	appConfig.SetRoot(home)

	v := viper.New()
	v.SetConfigFile(filepath.Join(home, "config", "config.toml"))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	appFile := filepath.Join(home, "config", app_config.AppConfigFile)
	if _, err := os.Stat(appFile); err == nil {
		v.SetConfigFile(appFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading app config: %w", err)
		}
	}
	if err := v.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	appConfig.App.Home = home
	if err := appConfig.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid configuration data: %w", err)
	}
	return appConfig, nil
}

func startRun(cmd *cobra.Command, args []string) error {
	home := app_config.ExpandHome(homeDir)
	appConfig, err := loadConfig(home)
	if err != nil {
		return err
	}

	pv := privval.LoadFilePV(
		appConfig.PrivValidatorKeyFile(),
		appConfig.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(appConfig.NodeKeyFile())
	if err != nil {
		return fmt.Errorf("failed to load node's key: %w", err)
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err = cmtflags.ParseLogLevel(appConfig.LogLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	agoraApp, err := app.NewAgoraApp(appConfig.App, logger)
	if err != nil {
		return fmt.Errorf("new app: %w", err)
	}

	node, err := nm.NewNode(
		appConfig.Config,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(agoraApp),
		nm.DefaultGenesisDocProviderFunc(appConfig.Config),
		cmtconfig.DefaultDBProvider,
		nm.DefaultMetricsProvider(appConfig.Instrumentation),
		logger,
	)
	if err != nil {
		return fmt.Errorf("creating node: %w", err)
	}

	agoraApp.Start(node.BlockStore())
	if err = node.Start(); err != nil {
		return fmt.Errorf("start comet node: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var indexerDone <-chan struct{}
	if appConfig.App.IndexerEnabled {
		if indexerDone, err = startIndexer(ctx, appConfig, logger); err != nil {
			logger.Error("indexer disabled", "err", err)
		}
	}

	defer func() {
		logger.Info("shutting down")
		cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := node.Stop(); err != nil {
				logger.Error("stop comet node fail", "err", err)
			}
			node.Wait()
			agoraApp.Stop()
			if indexerDone != nil {
				<-indexerDone
			}
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	return nil
}

// startIndexer runs the chain indexer and its HTTP service until ctx is
// cancelled. The returned channel is closed once both have stopped and the
// index database is closed.
func startIndexer(ctx context.Context, appConfig *app_config.Config, logger cmtlog.Logger) (<-chan struct{}, error) {
	rpcUrl, err := url.Parse(appConfig.RPC.ListenAddress)
	if err != nil {
		return nil, err
	}
	rpcUrl.Scheme = "http"
	idx, err := indexer.NewChainIndexer(logger, appConfig.App.IndexerDBPath(), rpcUrl.String())
	if err != nil {
		return nil, err
	}
	svc := indexer.NewService(appConfig.App.IndexerListen, idx, logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		idx.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := svc.Start(ctx); err != nil {
			logger.Error("indexer service stopped", "err", err)
		}
	}()
	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
		if err := idx.Close(); err != nil {
			logger.Error("close indexer fail", "err", err)
		}
	}()
	return done, nil
}
