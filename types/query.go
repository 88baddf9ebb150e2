package types

import "github.com/ethereum/go-ethereum/common"

// ABCI query paths.
const (
	QueryPathAccounts    = "/accounts/"
	QueryPathRegistry    = "/registry/"
	QueryPathUnits       = "/units/"
	QueryPathCredentials = "/credentials/"
	QueryPathVotes       = "/votes/"
)

// QueryRequest is the JSON body of an ABCI query. Target is the unit, issuer
// or vote the method reads; Address is the identity the question is about.
type QueryRequest struct {
	Method  string         `json:"method"`
	Target  common.Address `json:"target,omitempty"`
	Address common.Address `json:"address,omitempty"`
	Index   uint64         `json:"index,omitempty"`
	Offset  uint64         `json:"offset,omitempty"`
	Limit   uint64         `json:"limit,omitempty"`
	Count   uint64         `json:"count,omitempty"`
	TypeID  uint64         `json:"typeId,omitempty"`
	TypeIDs []uint64       `json:"typeIds,omitempty"`
}

type InstancePage struct {
	Instances []common.Address `json:"instances"`
	Total     uint64           `json:"total"`
}
