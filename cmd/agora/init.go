package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/Emmo00/agora/config"
	"github.com/Emmo00/agora/types"
	cmtos "github.com/cometbft/cometbft/libs/os"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/spf13/cobra"
)

type printInfo struct {
	Moniker    string          `json:"moniker" yaml:"moniker"`
	ChainID    string          `json:"chain_id" yaml:"chain_id"`
	NodeID     string          `json:"node_id" yaml:"node_id"`
	Owner      string          `json:"owner" yaml:"owner"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)

	return err
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, p2p, genesis, owner key and application configuration files",
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().BoolP(types.FlagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(types.FlagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().StringP(types.FlagHome, "d", "", "home directory (default $HOME/.agora)")
	initCmd.Flags().String("vote-template", "", "vote template address written into app_state")
	initCmd.Flags().Bool("indexer", false, "enable the indexer in app.toml")
}

func initRun(cmd *cobra.Command, args []string) error {
	home, _ := cmd.Flags().GetString(types.FlagHome)
	chainID, _ := cmd.Flags().GetString(types.FlagChainID)
	overwrite, _ := cmd.Flags().GetBool(types.FlagOverwrite)
	template, _ := cmd.Flags().GetString("vote-template")
	indexer, _ := cmd.Flags().GetBool("indexer")

	if chainID == "" {
		chainID = fmt.Sprintf("agora-chain-%v", rand.Uint64())
	}
	appConfig := config.DefaultConfig(home)
	appConfig.App.IndexerEnabled = indexer

	appGenesis := types.DefaultAppGenesis()
	if template != "" {
		addr, err := parseAddress(template)
		if err != nil {
			return err
		}
		appGenesis.VoteTemplate = addr
		appConfig.App.VoteTemplate = addr.Hex()
	}
	if err := appGenesis.Validate(); err != nil {
		return err
	}
	appState, err := json.Marshal(appGenesis)
	if err != nil {
		return err
	}

	nodeID, pk, err := config.InitializeNodeValidatorFiles(appConfig, nil)
	if err != nil {
		return err
	}
	owner, err := config.InitializeOwner(appConfig.App.Home)
	if err != nil {
		return err
	}

	genFile := appConfig.GenesisFile()
	if !overwrite && cmtos.FileExists(genFile) {
		return fmt.Errorf("genesis.json file already exists: %v", genFile)
	}
	genDoc := &cmttypes.GenesisDoc{
		GenesisTime:     time.Now(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators: []cmttypes.GenesisValidator{
			{Address: pk.Address(), PubKey: pk, Power: types.DefaultPower},
		},
		AppState: appState,
	}
	if err = types.ExportGenesisFile(genDoc, genFile); err != nil {
		return fmt.Errorf("failed to export genesis file: %w", err)
	}
	if err = config.WriteConfigFiles(appConfig.App.Home, appConfig); err != nil {
		return err
	}
	return displayInfo(printInfo{
		Moniker:    appConfig.Moniker,
		ChainID:    chainID,
		NodeID:     nodeID,
		Owner:      owner.Hex(),
		AppMessage: appState,
	})
}
