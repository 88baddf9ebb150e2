package types

import (
	"encoding/json"
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	EventInstanceCreatedType       = "instance_created"
	EventAdminAddedType            = "admin_added"
	EventAdminRemovedType          = "admin_removed"
	EventMetadataUpdatedType       = "metadata_updated"
	EventCredentialTypeCreatedType = "credential_type_created"
	EventAllowlistUpdatedType      = "allowlist_updated"
	EventCredentialMintedType      = "credential_minted"
	EventVoteCreatedType           = "vote_created"
	EventVoteCastType              = "vote_cast"
)

func decodeAddress(v string) (common.Address, bool) {
	if !common.IsHexAddress(v) {
		return common.Address{}, false
	}
	return common.HexToAddress(v), true
}

type EventInstanceCreated struct {
	Instance common.Address `json:"instance"`
	Creator  common.Address `json:"creator"`
	Metadata string         `json:"metadata"`
	Index    uint64         `json:"index"`
}

func EncodeEventInstanceCreated(event *EventInstanceCreated) abci.Event {
	return abci.Event{
		Type: EventInstanceCreatedType,
		Attributes: []abci.EventAttribute{
			{Key: "instance", Value: event.Instance.Hex(), Index: true},
			{Key: "creator", Value: event.Creator.Hex(), Index: true},
			{Key: "metadata", Value: event.Metadata, Index: false},
			{Key: "index", Value: fmt.Sprintf("%v", event.Index), Index: false},
		},
	}
}

func DecodeEventInstanceCreated(originEvent abci.Event) *EventInstanceCreated {
	event := &EventInstanceCreated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "instance":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Instance = addr
		case "creator":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Creator = addr
		case "metadata":
			event.Metadata = v.Value
		case "index":
			index, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Index = index
		}
	}
	return event
}

// EventAdmin is emitted for both admin grants and revocations; Added
// selects the event type.
type EventAdmin struct {
	Unit  common.Address `json:"unit"`
	Admin common.Address `json:"admin"`
	Actor common.Address `json:"actor"`
	Added bool           `json:"added"`
}

func EncodeEventAdmin(event *EventAdmin) abci.Event {
	tp := EventAdminRemovedType
	if event.Added {
		tp = EventAdminAddedType
	}
	return abci.Event{
		Type: tp,
		Attributes: []abci.EventAttribute{
			{Key: "unit", Value: event.Unit.Hex(), Index: true},
			{Key: "admin", Value: event.Admin.Hex(), Index: true},
			{Key: "actor", Value: event.Actor.Hex(), Index: false},
		},
	}
}

func DecodeEventAdmin(originEvent abci.Event) *EventAdmin {
	event := &EventAdmin{Added: originEvent.Type == EventAdminAddedType}
	for _, v := range originEvent.Attributes {
		addr, ok := decodeAddress(v.Value)
		if !ok {
			return nil
		}
		switch v.Key {
		case "unit":
			event.Unit = addr
		case "admin":
			event.Admin = addr
		case "actor":
			event.Actor = addr
		}
	}
	return event
}

type EventMetadataUpdated struct {
	Unit        common.Address `json:"unit"`
	OldMetadata string         `json:"oldMetadata"`
	NewMetadata string         `json:"newMetadata"`
}

func EncodeEventMetadataUpdated(event *EventMetadataUpdated) abci.Event {
	return abci.Event{
		Type: EventMetadataUpdatedType,
		Attributes: []abci.EventAttribute{
			{Key: "unit", Value: event.Unit.Hex(), Index: true},
			{Key: "old", Value: event.OldMetadata, Index: false},
			{Key: "new", Value: event.NewMetadata, Index: false},
		},
	}
}

func DecodeEventMetadataUpdated(originEvent abci.Event) *EventMetadataUpdated {
	event := &EventMetadataUpdated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "unit":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Unit = addr
		case "old":
			event.OldMetadata = v.Value
		case "new":
			event.NewMetadata = v.Value
		}
	}
	return event
}

type EventCredentialTypeCreated struct {
	Issuer   common.Address `json:"issuer"`
	TypeID   uint64         `json:"typeId"`
	Name     string         `json:"name"`
	Metadata string         `json:"metadata"`
	IsOpen   bool           `json:"isOpen"`
}

func EncodeEventCredentialTypeCreated(event *EventCredentialTypeCreated) abci.Event {
	return abci.Event{
		Type: EventCredentialTypeCreatedType,
		Attributes: []abci.EventAttribute{
			{Key: "issuer", Value: event.Issuer.Hex(), Index: true},
			{Key: "type", Value: fmt.Sprintf("%v", event.TypeID), Index: true},
			{Key: "name", Value: event.Name, Index: false},
			{Key: "metadata", Value: event.Metadata, Index: false},
			{Key: "open", Value: fmt.Sprintf("%v", event.IsOpen), Index: false},
		},
	}
}

func DecodeEventCredentialTypeCreated(originEvent abci.Event) *EventCredentialTypeCreated {
	event := &EventCredentialTypeCreated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "issuer":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Issuer = addr
		case "type":
			id, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.TypeID = id
		case "name":
			event.Name = v.Value
		case "metadata":
			event.Metadata = v.Value
		case "open":
			open, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.IsOpen = open
		}
	}
	return event
}

type EventAllowlistUpdated struct {
	Issuer    common.Address   `json:"issuer"`
	TypeID    uint64           `json:"typeId"`
	Addresses []common.Address `json:"addresses"`
}

func EncodeEventAllowlistUpdated(event *EventAllowlistUpdated) abci.Event {
	addrs, _ := json.Marshal(event.Addresses)
	return abci.Event{
		Type: EventAllowlistUpdatedType,
		Attributes: []abci.EventAttribute{
			{Key: "issuer", Value: event.Issuer.Hex(), Index: true},
			{Key: "type", Value: fmt.Sprintf("%v", event.TypeID), Index: true},
			{Key: "addresses", Value: string(addrs), Index: false},
		},
	}
}

func DecodeEventAllowlistUpdated(originEvent abci.Event) *EventAllowlistUpdated {
	event := &EventAllowlistUpdated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "issuer":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Issuer = addr
		case "type":
			id, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.TypeID = id
		case "addresses":
			if err := json.Unmarshal([]byte(v.Value), &event.Addresses); err != nil {
				return nil
			}
		}
	}
	return event
}

type EventCredentialMinted struct {
	Issuer   common.Address `json:"issuer"`
	TypeID   uint64         `json:"typeId"`
	Holder   common.Address `json:"holder"`
	Operator common.Address `json:"operator"`
}

func EncodeEventCredentialMinted(event *EventCredentialMinted) abci.Event {
	return abci.Event{
		Type: EventCredentialMintedType,
		Attributes: []abci.EventAttribute{
			{Key: "issuer", Value: event.Issuer.Hex(), Index: true},
			{Key: "type", Value: fmt.Sprintf("%v", event.TypeID), Index: true},
			{Key: "holder", Value: event.Holder.Hex(), Index: true},
			{Key: "operator", Value: event.Operator.Hex(), Index: false},
		},
	}
}

func DecodeEventCredentialMinted(originEvent abci.Event) *EventCredentialMinted {
	event := &EventCredentialMinted{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "issuer", "holder", "operator":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			switch v.Key {
			case "issuer":
				event.Issuer = addr
			case "holder":
				event.Holder = addr
			default:
				event.Operator = addr
			}
		case "type":
			id, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.TypeID = id
		}
	}
	return event
}

type EventVoteCreated struct {
	Unit          common.Address `json:"unit"`
	Vote          common.Address `json:"vote"`
	Index         uint64         `json:"index"`
	Prompt        string         `json:"prompt"`
	Options       []string       `json:"options"`
	VotingEnd     uint64         `json:"votingEnd"`
	RequiredTypes []uint64       `json:"requiredTypes"`
}

func EncodeEventVoteCreated(event *EventVoteCreated) abci.Event {
	options, _ := json.Marshal(event.Options)
	required, _ := json.Marshal(event.RequiredTypes)
	return abci.Event{
		Type: EventVoteCreatedType,
		Attributes: []abci.EventAttribute{
			{Key: "unit", Value: event.Unit.Hex(), Index: true},
			{Key: "vote", Value: event.Vote.Hex(), Index: true},
			{Key: "index", Value: fmt.Sprintf("%v", event.Index), Index: false},
			{Key: "prompt", Value: event.Prompt, Index: false},
			{Key: "options", Value: string(options), Index: false},
			{Key: "votingEnd", Value: fmt.Sprintf("%v", event.VotingEnd), Index: false},
			{Key: "required", Value: string(required), Index: false},
		},
	}
}

func DecodeEventVoteCreated(originEvent abci.Event) *EventVoteCreated {
	event := &EventVoteCreated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "unit":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Unit = addr
		case "vote":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Vote = addr
		case "index":
			index, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Index = index
		case "prompt":
			event.Prompt = v.Value
		case "options":
			if err := json.Unmarshal([]byte(v.Value), &event.Options); err != nil {
				return nil
			}
		case "votingEnd":
			end, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.VotingEnd = end
		case "required":
			if err := json.Unmarshal([]byte(v.Value), &event.RequiredTypes); err != nil {
				return nil
			}
		}
	}
	return event
}

type EventVoteCast struct {
	Vote   common.Address `json:"vote"`
	Voter  common.Address `json:"voter"`
	Option uint64         `json:"option"`
}

func EncodeEventVoteCast(event *EventVoteCast) abci.Event {
	return abci.Event{
		Type: EventVoteCastType,
		Attributes: []abci.EventAttribute{
			{Key: "vote", Value: event.Vote.Hex(), Index: true},
			{Key: "voter", Value: event.Voter.Hex(), Index: true},
			{Key: "option", Value: fmt.Sprintf("%v", event.Option), Index: false},
		},
	}
}

func DecodeEventVoteCast(originEvent abci.Event) *EventVoteCast {
	event := &EventVoteCast{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "vote":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Vote = addr
		case "voter":
			addr, ok := decodeAddress(v.Value)
			if !ok {
				return nil
			}
			event.Voter = addr
		case "option":
			option, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Option = option
		}
	}
	return event
}
