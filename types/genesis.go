package types

import (
	"encoding/json"
	"errors"

	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const AgoraModuleName = "agora"
const DefaultPower = 1000

const (
	FlagOverwrite = "overwrite"
	FlagChainID   = "chain-id"
	FlagHome      = "home"
)

// DefaultVoteTemplate is the shared vote logic reference handed to every
// new governance unit.
var DefaultVoteTemplate = common.BytesToAddress(crypto.Keccak256([]byte("agora/vote-template"))[12:])

// AppGenesis is the app_state section of the genesis document.
type AppGenesis struct {
	VoteTemplate common.Address `json:"vote_template"`
}

func DefaultAppGenesis() *AppGenesis {
	return &AppGenesis{
		VoteTemplate: DefaultVoteTemplate,
	}
}

func (g *AppGenesis) Validate() error {
	if g.VoteTemplate == (common.Address{}) {
		return errors.New("genesis app_state must include a vote_template")
	}
	return nil
}

// ParseAppGenesis decodes app_state; an empty document yields the defaults.
func ParseAppGenesis(dat []byte) (*AppGenesis, error) {
	g := DefaultAppGenesis()
	if len(dat) == 0 {
		return g, nil
	}
	if err := json.Unmarshal(dat, g); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func ExportGenesisFile(genesis *cmttypes.GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}
