package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	MinVoteOptions = 2
	MaxVoteOptions = 10
)

// RegistryAddress is the deployer address every governance unit handle is
// derived from.
var RegistryAddress = common.BytesToAddress(crypto.Keccak256([]byte("agora/registry"))[12:])

// UnitAddress returns the handle of the index-th governance unit.
func UnitAddress(index uint64) common.Address {
	return crypto.CreateAddress(RegistryAddress, index)
}

// IssuerAddress returns the handle of the credential issuer owned by unit.
func IssuerAddress(unit common.Address) common.Address {
	return crypto.CreateAddress(unit, 0)
}

// VoteAddress returns the handle of the index-th vote created by unit.
func VoteAddress(unit common.Address, index uint64) common.Address {
	return crypto.CreateAddress(unit, index+1)
}

type Registry struct {
	VoteTemplate  common.Address `json:"voteTemplate"`
	InstanceCount uint64         `json:"instanceCount"`
}

type Unit struct {
	Address      common.Address   `json:"address"`
	Index        uint64           `json:"index"`
	Creator      common.Address   `json:"creator"`
	Metadata     string           `json:"metadata"`
	Issuer       common.Address   `json:"issuer"`
	VoteTemplate common.Address   `json:"voteTemplate"`
	Admins       []common.Address `json:"admins"`
	VoteCount    uint64           `json:"voteCount"`
	Initialized  bool             `json:"initialized"`
	CreatedAt    uint64           `json:"createdAt"`
}

type UnitInfo struct {
	Issuer     common.Address `json:"issuer"`
	Metadata   string         `json:"metadata"`
	VoteCount  uint64         `json:"voteCount"`
	AdminCount uint64         `json:"adminCount"`
}

type Issuer struct {
	Address    common.Address `json:"address"`
	Owner      common.Address `json:"owner"`
	NextTypeID uint64         `json:"nextTypeId"`
}

type CredentialType struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Metadata string `json:"metadata"`
	IsOpen   bool   `json:"isOpen"`
	Exists   bool   `json:"exists"`
}

type Vote struct {
	Address       common.Address `json:"address"`
	Unit          common.Address `json:"unit"`
	Issuer        common.Address `json:"issuer"`
	Index         uint64         `json:"index"`
	Prompt        string         `json:"prompt"`
	Options       []string       `json:"options"`
	Tallies       []uint64       `json:"tallies"`
	Total         uint64         `json:"total"`
	VotingEnd     uint64         `json:"votingEnd"`
	RequiredTypes []uint64       `json:"requiredTypes"`
	Initialized   bool           `json:"initialized"`
}

// Active reports whether ballots are accepted at now.
func (v *Vote) Active(now uint64) bool {
	return v.Initialized && now < v.VotingEnd
}

func (v *Vote) Gated() bool {
	return len(v.RequiredTypes) > 0
}

type Ballot struct {
	Voted  bool   `json:"voted"`
	Option uint64 `json:"option"`
}

type VoteResults struct {
	Options []string `json:"options"`
	Tallies []uint64 `json:"tallies"`
	Total   uint64   `json:"total"`
}

type VoteWinner struct {
	Index  uint64 `json:"index"`
	Option string `json:"option"`
	Votes  uint64 `json:"votes"`
}
