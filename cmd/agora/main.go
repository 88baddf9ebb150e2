package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: "Agora is an on-chain governance engine",
	Long: `Agora runs community governance units on a CometBFT chain:
admin sets, soulbound membership credentials and time-bound votes.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(instanceCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
