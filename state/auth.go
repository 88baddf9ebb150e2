package state

import "github.com/ethereum/go-ethereum/common"

type Action uint8

const (
	ActionManageAdmins Action = iota + 1
	ActionUpdateMetadata
	ActionManageCredentials
	ActionCreateVote
)

// Authorizer decides whether identity may perform action.
type Authorizer interface {
	IsAuthorized(identity common.Address, action Action) bool
}

// unitAuthorizer grants every unit action to the unit's admins.
type unitAuthorizer struct {
	admins *adminSet
}

func (a unitAuthorizer) IsAuthorized(identity common.Address, action Action) bool {
	switch action {
	case ActionManageAdmins, ActionUpdateMetadata, ActionManageCredentials, ActionCreateVote:
		return a.admins.Has(identity)
	}
	return false
}

func authorize(auth Authorizer, identity common.Address, action Action) error {
	if !auth.IsAuthorized(identity, action) {
		return ErrUnauthorized
	}
	return nil
}
