package handler

import (
	"context"

	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	"github.com/Emmo00/agora/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// CredentialTxHandler handles the calls members make on an issuer directly.
type CredentialTxHandler struct {
	baseHandler
}

func NewCredentialTxHandler(logger cmtlog.Logger) (h *CredentialTxHandler) {
	logger = logger.With("module", "credentialTx")
	h = &CredentialTxHandler{}
	h.logger = logger
	h.apply = h.handleTx
	return
}

func (h *CredentialTxHandler) handleTx(ctx context.Context, st *state.State, btx *tx.AgoraTx) (events []abcitypes.Event, err error) {
	switch wtx := btx.Tx.(type) {
	case *tx.MintTx:
		event, err := st.Mint(wtx.Issuer, btx.From, wtx.TypeID)
		if err != nil {
			return nil, err
		}
		return []abcitypes.Event{types.EncodeEventCredentialMinted(event)}, nil
	case *tx.TransferTx:
		return nil, st.Transfer(wtx.Issuer, btx.From, wtx.To, wtx.TypeID, wtx.Amount)
	case *tx.BatchTransferTx:
		return nil, st.BatchTransfer(wtx.Issuer, btx.From, wtx.To, wtx.TypeIDs, wtx.Amounts)
	}
	return nil, tx.ErrUnsupportedTxType
}
