package main

import (
	"github.com/Emmo00/agora/types"
	"github.com/spf13/cobra"
)

const DefaultRPCUrl = "http://127.0.0.1:26657"

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", DefaultRPCUrl, "agora node rpc url")
}

func homeFlag(cmd *cobra.Command, home *string) {
	cmd.Flags().StringVarP(home, types.FlagHome, "d", "", "home directory (default $HOME/.agora)")
}

// txFlags registers the flags every signed tx command shares.
func txFlags(cmd *cobra.Command, args *txArguments) {
	urlFlag(cmd, &args.Url)
	cmd.Flags().StringVarP(&args.Key, "key", "k", "", "signing key path (default <home>/config/owner_priv_key)")
	cmd.Flags().StringVarP(&args.Home, types.FlagHome, "d", "", "home directory used to locate the default key")
	cmd.Flags().Uint64VarP(&args.Nonce, "nonce", "n", 0, "account nonce, queried from the node when 0")
	cmd.Flags().BoolVarP(&args.NoSend, "nosend", "", false, "print the signed transaction instead of sending it")
}

// toUint64s converts the ids collected by a UintSlice flag.
func toUint64s(ids []uint) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
