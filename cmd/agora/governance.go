package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Emmo00/agora/tx"
	"github.com/spf13/cobra"
)

var txArgs txArguments

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Registry transactions",
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the admin set of a unit",
}

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Unit transactions",
}

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Credential transactions",
}

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Vote transactions",
}

var instanceCreateCmd = &cobra.Command{
	Use:   "create <metadata>",
	Short: "Create a governance unit with the signer as first admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendTx(&txArgs, tx.AgoraTxTypeCreateInstance, &tx.CreateInstanceTx{Metadata: args[0]})
	},
}

var adminAddCmd = &cobra.Command{
	Use:   "add <unit> <admin>",
	Short: "Grant the admin role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := parseAddresses(args)
		if err != nil {
			return err
		}
		return sendTx(&txArgs, tx.AgoraTxTypeAddAdmin, &tx.AddAdminTx{Unit: addrs[0], Admin: addrs[1]})
	},
}

var adminRemoveCmd = &cobra.Command{
	Use:   "remove <unit> <admin>",
	Short: "Revoke the admin role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := parseAddresses(args)
		if err != nil {
			return err
		}
		return sendTx(&txArgs, tx.AgoraTxTypeRemoveAdmin, &tx.RemoveAdminTx{Unit: addrs[0], Admin: addrs[1]})
	},
}

var unitMetadataCmd = &cobra.Command{
	Use:   "metadata <unit> <metadata>",
	Short: "Replace the metadata pointer of a unit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		return sendTx(&txArgs, tx.AgoraTxTypeUpdateMetadata, &tx.UpdateMetadataTx{Unit: unit, Metadata: args[1]})
	},
}

var credentialOpen bool

var credentialCreateTypeCmd = &cobra.Command{
	Use:   "create-type <unit> <name> <metadata>",
	Short: "Create a credential type on the unit's issuer",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		return sendTx(&txArgs, tx.AgoraTxTypeCreateCredentialType, &tx.CreateCredentialTypeTx{
			Unit:     unit,
			Name:     args[1],
			Metadata: args[2],
			IsOpen:   credentialOpen,
		})
	},
}

var credentialAllowlistCmd = &cobra.Command{
	Use:   "allowlist <unit> <type> <address>...",
	Short: "Allow addresses to mint a gated credential type",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		typeId, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid type id: %w", err)
		}
		addrs, err := parseAddresses(args[2:])
		if err != nil {
			return err
		}
		return sendTx(&txArgs, tx.AgoraTxTypeAddToAllowlist, &tx.AddToAllowlistTx{Unit: unit, TypeID: typeId, Addresses: addrs})
	},
}

var credentialMintCmd = &cobra.Command{
	Use:   "mint <issuer> <type>",
	Short: "Mint a credential to the signer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		issuer, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		typeId, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid type id: %w", err)
		}
		return sendTx(&txArgs, tx.AgoraTxTypeMint, &tx.MintTx{Issuer: issuer, TypeID: typeId})
	},
}

var credentialMintToCmd = &cobra.Command{
	Use:   "mint-to <unit> <holder> <type>",
	Short: "Issue a credential to holder through the unit",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := parseAddresses(args[:2])
		if err != nil {
			return err
		}
		typeId, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid type id: %w", err)
		}
		return sendTx(&txArgs, tx.AgoraTxTypeMintTo, &tx.MintToTx{Unit: addrs[0], Holder: addrs[1], TypeID: typeId})
	},
}

var (
	voteDuration time.Duration
	voteRequired []uint
)

var voteCreateCmd = &cobra.Command{
	Use:   "create <unit> <prompt> <option>...",
	Short: "Open a vote on a unit",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		return sendTx(&txArgs, tx.AgoraTxTypeCreateVote, &tx.CreateVoteTx{
			Unit:          unit,
			Prompt:        args[1],
			Options:       args[2:],
			Duration:      uint64(voteDuration / time.Second),
			RequiredTypes: toUint64s(voteRequired),
		})
	},
}

var voteCastCmd = &cobra.Command{
	Use:   "cast <vote> <option>",
	Short: "Cast the signer's ballot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vote, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		option, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid option index: %w", err)
		}
		return sendTx(&txArgs, tx.AgoraTxTypeCastVote, &tx.CastVoteTx{Vote: vote, Option: option})
	},
}

func init() {
	for _, c := range []*cobra.Command{
		instanceCreateCmd, adminAddCmd, adminRemoveCmd, unitMetadataCmd,
		credentialCreateTypeCmd, credentialAllowlistCmd, credentialMintCmd, credentialMintToCmd,
		voteCreateCmd, voteCastCmd,
	} {
		txFlags(c, &txArgs)
	}
	credentialCreateTypeCmd.Flags().BoolVar(&credentialOpen, "open", false, "anyone may mint the type")
	voteCreateCmd.Flags().DurationVar(&voteDuration, "duration", time.Hour, "voting period")
	voteCreateCmd.Flags().UintSliceVar(&voteRequired, "required", nil, "credential type ids that gate voting")

	instanceCmd.AddCommand(instanceCreateCmd)
	adminCmd.AddCommand(adminAddCmd, adminRemoveCmd)
	unitCmd.AddCommand(unitMetadataCmd)
	credentialCmd.AddCommand(credentialCreateTypeCmd, credentialAllowlistCmd, credentialMintCmd, credentialMintToCmd)
	voteCmd.AddCommand(voteCreateCmd, voteCastCmd)
}
