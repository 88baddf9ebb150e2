package handler

import (
	"context"

	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	"github.com/Emmo00/agora/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type RegistryTxHandler struct {
	baseHandler
}

func NewRegistryTxHandler(logger cmtlog.Logger) (h *RegistryTxHandler) {
	logger = logger.With("module", "registryTx")
	h = &RegistryTxHandler{}
	h.logger = logger
	h.apply = h.handleTx
	return
}

func (h *RegistryTxHandler) handleTx(ctx context.Context, st *state.State, btx *tx.AgoraTx) (events []abcitypes.Event, err error) {
	switch wtx := btx.Tx.(type) {
	case *tx.CreateInstanceTx:
		unit, event, err := st.CreateInstance(btx.From, wtx.Metadata)
		if err != nil {
			return nil, err
		}
		h.logger.Info("instance created", "unit", unit.Address, "index", unit.Index, "creator", btx.From)
		return []abcitypes.Event{types.EncodeEventInstanceCreated(event)}, nil
	}
	return nil, tx.ErrUnsupportedTxType
}
