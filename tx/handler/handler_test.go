package handler

import (
	"context"
	"testing"

	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	"github.com/Emmo00/agora/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var creator = common.HexToAddress("0x00000000000000000000000000000000000a11ce")

func newTestState(t *testing.T) *state.State {
	t.Helper()
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	st.SetBlockTime(1_700_000_000)
	require.NoError(t, st.SetRegistry(types.DefaultAppGenesis()))
	return st
}

func TestEveryTxTypeHasHandler(t *testing.T) {
	hdlrs := NewTxHandlers(cmtlog.NewNopLogger())
	for tp := tx.AgoraTxTypeCreateInstance; tp <= tx.AgoraTxTypeCastVote; tp++ {
		require.Contains(t, hdlrs, tp, tp.String())
	}
}

func TestCheckLeavesStateUntouched(t *testing.T) {
	st := newTestState(t)
	h := NewRegistryTxHandler(cmtlog.NewNopLogger())
	btx := &tx.AgoraTx{
		Type: tx.AgoraTxTypeCreateInstance,
		From: creator,
		Tx:   &tx.CreateInstanceTx{Metadata: "ipfs://unit"},
	}

	res, err := h.Check(context.Background(), st, btx)
	require.NoError(t, err)
	require.Zero(t, res.Code)
	n, err := st.InstanceCount()
	require.NoError(t, err)
	require.Zero(t, n)

	result, err := h.Process(context.Background(), st, btx)
	require.NoError(t, err)
	require.Zero(t, result.Code)
	require.Len(t, result.Events, 1)
	n, err = st.InstanceCount()
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)
}

func TestFailureMapsToCode(t *testing.T) {
	st := newTestState(t)
	h := NewUnitTxHandler(cmtlog.NewNopLogger())
	btx := &tx.AgoraTx{
		Type: tx.AgoraTxTypeUpdateMetadata,
		From: creator,
		Tx:   &tx.UpdateMetadataTx{Unit: types.UnitAddress(0), Metadata: "ipfs://x"},
	}

	result, err := h.Process(context.Background(), st, btx)
	require.NoError(t, err)
	require.Equal(t, state.ErrorCode(state.ErrNotInitialized), result.Code)
	require.Equal(t, state.Codespace, result.Codespace)
	require.Equal(t, state.ErrNotInitialized.Error(), result.Log)

	res, err := h.Check(context.Background(), st, &tx.AgoraTx{
		Type: tx.AgoraTxTypeCastVote,
		From: creator,
		Tx:   &tx.CastVoteTx{},
	})
	require.NoError(t, err)
	require.Equal(t, uint32(1), res.Code)
}
