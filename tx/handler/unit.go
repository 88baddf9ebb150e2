package handler

import (
	"context"

	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	"github.com/Emmo00/agora/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// UnitTxHandler handles the admin-only operations of a governance unit.
type UnitTxHandler struct {
	baseHandler
}

func NewUnitTxHandler(logger cmtlog.Logger) (h *UnitTxHandler) {
	logger = logger.With("module", "unitTx")
	h = &UnitTxHandler{}
	h.logger = logger
	h.apply = h.handleTx
	return
}

func (h *UnitTxHandler) handleTx(ctx context.Context, st *state.State, btx *tx.AgoraTx) (events []abcitypes.Event, err error) {
	switch wtx := btx.Tx.(type) {
	case *tx.AddAdminTx:
		event, err := st.AddAdmin(wtx.Unit, btx.From, wtx.Admin)
		if err != nil {
			return nil, err
		}
		if event != nil {
			events = append(events, types.EncodeEventAdmin(event))
		}
	case *tx.RemoveAdminTx:
		event, err := st.RemoveAdmin(wtx.Unit, btx.From, wtx.Admin)
		if err != nil {
			return nil, err
		}
		if event != nil {
			events = append(events, types.EncodeEventAdmin(event))
		}
	case *tx.UpdateMetadataTx:
		event, err := st.UpdateMetadata(wtx.Unit, btx.From, wtx.Metadata)
		if err != nil {
			return nil, err
		}
		events = append(events, types.EncodeEventMetadataUpdated(event))
	case *tx.CreateCredentialTypeTx:
		_, event, err := st.CreateCredentialType(wtx.Unit, btx.From, wtx.Name, wtx.Metadata, wtx.IsOpen)
		if err != nil {
			return nil, err
		}
		events = append(events, types.EncodeEventCredentialTypeCreated(event))
	case *tx.AddToAllowlistTx:
		event, err := st.AddToCredentialAllowlist(wtx.Unit, btx.From, wtx.TypeID, wtx.Addresses)
		if err != nil {
			return nil, err
		}
		events = append(events, types.EncodeEventAllowlistUpdated(event))
	case *tx.MintToTx:
		event, err := st.MintCredentialTo(wtx.Unit, btx.From, wtx.Holder, wtx.TypeID)
		if err != nil {
			return nil, err
		}
		events = append(events, types.EncodeEventCredentialMinted(event))
	case *tx.CreateVoteTx:
		vote, event, err := st.CreateVote(wtx.Unit, btx.From, wtx.Prompt, wtx.Options, wtx.Duration, wtx.RequiredTypes)
		if err != nil {
			return nil, err
		}
		h.logger.Info("vote created", "unit", wtx.Unit, "vote", vote, "votingEnd", event.VotingEnd)
		events = append(events, types.EncodeEventVoteCreated(event))
	default:
		return nil, tx.ErrUnsupportedTxType
	}
	return
}
