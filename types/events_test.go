package types

import (
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestVoteCreatedEvent(t *testing.T) {
	unit := UnitAddress(0)
	event := &EventVoteCreated{
		Unit:          unit,
		Vote:          VoteAddress(unit, 0),
		Index:         0,
		Prompt:        "Gated?",
		Options:       []string{"X", "Y"},
		VotingEnd:     1_700_000_010,
		RequiredTypes: []uint64{1},
	}
	encoded := EncodeEventVoteCreated(event)
	require.Equal(t, EventVoteCreatedType, encoded.Type)
	require.Equal(t, event, DecodeEventVoteCreated(encoded))
}

func TestAdminEventType(t *testing.T) {
	event := &EventAdmin{Unit: UnitAddress(1), Admin: common.HexToAddress("0xb0b"), Actor: common.HexToAddress("0xa11ce")}
	encoded := EncodeEventAdmin(event)
	require.Equal(t, EventAdminRemovedType, encoded.Type)
	require.Equal(t, event, DecodeEventAdmin(encoded))

	event.Added = true
	encoded = EncodeEventAdmin(event)
	require.Equal(t, EventAdminAddedType, encoded.Type)
	require.True(t, DecodeEventAdmin(encoded).Added)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	bad := abci.Event{
		Type: EventVoteCastType,
		Attributes: []abci.EventAttribute{
			{Key: "vote", Value: "not-an-address"},
		},
	}
	require.Nil(t, DecodeEventVoteCast(bad))

	bad = abci.Event{
		Type: EventInstanceCreatedType,
		Attributes: []abci.EventAttribute{
			{Key: "index", Value: "-1"},
		},
	}
	require.Nil(t, DecodeEventInstanceCreated(bad))
}

func TestHandlesAreDistinct(t *testing.T) {
	unit := UnitAddress(0)
	seen := map[common.Address]bool{RegistryAddress: true}
	for _, addr := range []common.Address{unit, UnitAddress(1), IssuerAddress(unit), VoteAddress(unit, 0), VoteAddress(unit, 1)} {
		require.False(t, seen[addr], addr.Hex())
		seen[addr] = true
	}
}

func TestParseAppGenesis(t *testing.T) {
	g, err := ParseAppGenesis(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultVoteTemplate, g.VoteTemplate)

	g, err = ParseAppGenesis([]byte(`{"vote_template":"0x0000000000000000000000000000000000000042"}`))
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x42"), g.VoteTemplate)

	_, err = ParseAppGenesis([]byte(`{"vote_template":"0x0000000000000000000000000000000000000000"}`))
	require.Error(t, err)
}
