package tx

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var testChainId = []byte("agora-test")

func TestSignRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	btx := &AgoraTx{
		Version: AgoraTxVersion1,
		Type:    AgoraTxTypeCreateVote,
		Nonce:   3,
		Tx: &CreateVoteTx{
			Unit:          common.HexToAddress("0x01"),
			Prompt:        "Pick one?",
			Options:       []string{"A", "B"},
			Duration:      3600,
			RequiredTypes: []uint64{1},
		},
	}
	require.NoError(t, btx.Sign(testChainId, key))
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), btx.From)

	dat, err := MarshalAgoraTx(btx)
	require.NoError(t, err)
	got, err := UnmarshalAgoraTx(dat)
	require.NoError(t, err)
	require.Equal(t, btx.Tx, got.Tx)
	require.Equal(t, btx.Nonce, got.Nonce)

	signer, err := got.Signer(testChainId)
	require.NoError(t, err)
	require.Equal(t, btx.From, signer)

	signer, err = got.Signer([]byte("other-chain"))
	require.NoError(t, err)
	require.NotEqual(t, btx.From, signer)
}

func TestSignerRejectsTampering(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	btx := &AgoraTx{
		Version: AgoraTxVersion1,
		Type:    AgoraTxTypeCastVote,
		Tx:      &CastVoteTx{Vote: common.HexToAddress("0x02"), Option: 0},
	}
	require.NoError(t, btx.Sign(testChainId, key))

	btx.Tx.(*CastVoteTx).Option = 1
	signer, err := btx.Signer(testChainId)
	if err == nil {
		require.NotEqual(t, btx.From, signer)
	}

	btx.Sig = nil
	_, err = btx.Signer(testChainId)
	require.ErrorIs(t, err, ErrMissingSignature)
}

func TestUnmarshalRejects(t *testing.T) {
	_, err := UnmarshalAgoraTx([]byte(`{"version":1,"type":99}`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalAgoraTx([]byte(`{"version":2,"type":1,"tx":{"metadata":"x"}}`))
	require.ErrorIs(t, err, ErrUnsupportedTxVersion)

	_, err = UnmarshalAgoraTx([]byte(`not json`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestTxTypeString(t *testing.T) {
	require.Equal(t, "cast_vote", AgoraTxTypeCastVote.String())
	require.Equal(t, "unknown", AgoraTxType(42).String())
}
