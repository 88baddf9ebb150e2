package main

import (
	"encoding/hex"
	"fmt"

	"github.com/Emmo00/agora/config"
	"github.com/Emmo00/agora/crypto"
	"github.com/spf13/cobra"
)

type keyArguments struct {
	Home      string
	Out       string
	Overwrite bool
}

var keyArgs keyArguments

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage secp256k1 signing keys",
}

var keyNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new signing key",
	Args:  cobra.ExactArgs(0),
	RunE:  keyNewRun,
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the address and public key of a signing key",
	Args:  cobra.ExactArgs(0),
	RunE:  keyShowRun,
}

func init() {
	for _, c := range []*cobra.Command{keyNewCmd, keyShowCmd} {
		homeFlag(c, &keyArgs.Home)
		c.Flags().StringVarP(&keyArgs.Out, "key", "k", "", "key file path (default <home>/config/owner_priv_key)")
	}
	keyNewCmd.Flags().BoolVarP(&keyArgs.Overwrite, "overwrite", "o", false, "replace an existing key file")
	keyCmd.AddCommand(keyNewCmd, keyShowCmd)
}

func (a *keyArguments) path() string {
	if a.Out != "" {
		return a.Out
	}
	return config.OwnerKeyPath(config.ExpandHome(a.Home))
}

func keyNewRun(cmd *cobra.Command, args []string) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	if err = key.Save(keyArgs.path(), keyArgs.Overwrite); err != nil {
		return err
	}
	fmt.Println("address:", key.Address().Hex())
	fmt.Println("path:", keyArgs.path())
	return nil
}

func keyShowRun(cmd *cobra.Command, args []string) error {
	key, err := crypto.LoadKey(keyArgs.path())
	if err != nil {
		return err
	}
	fmt.Println("address:", key.Address().Hex())
	fmt.Println("pubkey:", hex.EncodeToString(key.PublicKey()))
	return nil
}
