package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	agoracrypto "github.com/Emmo00/agora/crypto"
	"github.com/Emmo00/agora/types"
	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultHomeDir       = "$HOME/.agora"
	AppConfigFile        = "app.toml"
	OwnerKeyFile         = "owner_priv_key"
	DefaultIndexerListen = "127.0.0.1:8088"
	DefaultIndexerDB     = "data/indexer.db"
)

type AgoraAppConfig struct {
	Home string `mapstructure:"-"`

	// VoteTemplate is the default template written into a new genesis.
	VoteTemplate string `mapstructure:"vote_template"`

	IndexerEnabled bool   `mapstructure:"indexer_enabled"`
	IndexerListen  string `mapstructure:"indexer_listen"`
	IndexerDB      string `mapstructure:"indexer_db"`
}

func DefaultAgoraAppConfig(home string) *AgoraAppConfig {
	return &AgoraAppConfig{
		Home:           home,
		VoteTemplate:   types.DefaultVoteTemplate.Hex(),
		IndexerEnabled: false,
		IndexerListen:  DefaultIndexerListen,
		IndexerDB:      DefaultIndexerDB,
	}
}

// IndexerDBPath resolves IndexerDB against the home directory.
func (c *AgoraAppConfig) IndexerDBPath() string {
	if filepath.IsAbs(c.IndexerDB) {
		return c.IndexerDB
	}
	return filepath.Join(c.Home, c.IndexerDB)
}

func (c *AgoraAppConfig) DataDir() string {
	return filepath.Join(c.Home, "data")
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *AgoraAppConfig `mapstructure:"app"`
}

func ExpandHome(home string) string {
	if len(home) == 0 {
		home = os.ExpandEnv(DefaultHomeDir)
	}
	return home
}

func DefaultConfig(home string) *Config {
	home = ExpandHome(home)
	config := &Config{
		DefaultAgoraCometConfig(),
		DefaultAgoraAppConfig(home),
	}
	config.SetRoot(home)
	_ = os.MkdirAll(filepath.Join(home, "config"), 0755)
	return config
}

func OwnerKeyPath(home string) string {
	return filepath.Join(home, "config", OwnerKeyFile)
}

// InitializeOwner loads or generates the secp256k1 key that signs
// governance txs and returns its address.
func InitializeOwner(home string) (owner common.Address, err error) {
	path := OwnerKeyPath(home)
	key, err := agoracrypto.LoadKey(path)
	if err == nil {
		return key.Address(), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return owner, err
	}
	key, err = agoracrypto.GenerateKey()
	if err != nil {
		return
	}
	if err = key.Save(path, false); err != nil {
		return owner, fmt.Errorf("write owner key: %w", err)
	}
	return key.Address(), nil
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

func DefaultAgoraCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 3
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}
