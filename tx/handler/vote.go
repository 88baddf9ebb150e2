package handler

import (
	"context"

	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	"github.com/Emmo00/agora/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type VoteTxHandler struct {
	baseHandler
}

func NewVoteTxHandler(logger cmtlog.Logger) (h *VoteTxHandler) {
	logger = logger.With("module", "voteTx")
	h = &VoteTxHandler{}
	h.logger = logger
	h.apply = h.handleTx
	return
}

func (h *VoteTxHandler) handleTx(ctx context.Context, st *state.State, btx *tx.AgoraTx) (events []abcitypes.Event, err error) {
	wtx, ok := btx.Tx.(*tx.CastVoteTx)
	if !ok {
		return nil, tx.ErrUnsupportedTxType
	}
	event, err := st.CastVote(wtx.Vote, btx.From, wtx.Option)
	if err != nil {
		return nil, err
	}
	return []abcitypes.Event{types.EncodeEventVoteCast(event)}, nil
}
