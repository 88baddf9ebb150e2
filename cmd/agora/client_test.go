package main

import (
	"path/filepath"
	"testing"

	"github.com/Emmo00/agora/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestParseAddresses(t *testing.T) {
	addrs, err := parseAddresses([]string{"0x0000000000000000000000000000000000000b0b", "00000000000000000000000000000000000a11ce"})
	require.NoError(t, err)
	require.Equal(t, []common.Address{common.HexToAddress("0xb0b"), common.HexToAddress("0xa11ce")}, addrs)

	_, err = parseAddresses([]string{"0x0b0b"})
	require.Error(t, err)
	_, err = parseAddresses(nil)
	require.Error(t, err)
}

func TestKeyPath(t *testing.T) {
	args := txArguments{Home: "/srv/agora"}
	require.Equal(t, filepath.Join("/srv/agora", "config", config.OwnerKeyFile), args.keyPath())
	args.Key = "/tmp/k"
	require.Equal(t, "/tmp/k", args.keyPath())
}

func TestTypeIDFlags(t *testing.T) {
	defer func() { queryArgs.TypeIDs = nil }()
	require.NoError(t, queryCmd.Flags().Parse([]string{"--types", "1,2", "--types", "7"}))
	require.Equal(t, []uint64{1, 2, 7}, toUint64s(queryArgs.TypeIDs))
	require.Nil(t, toUint64s(nil))

	defer func() { voteRequired = nil }()
	require.NoError(t, voteCreateCmd.Flags().Parse([]string{"--required", "3"}))
	require.Equal(t, []uint64{3}, toUint64s(voteRequired))
}
