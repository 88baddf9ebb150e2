package main

import (
	"fmt"

	"github.com/Emmo00/agora/app"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the version",
	Aliases: []string{"V"},
	Run:     versionRun,
}

func versionRun(cmd *cobra.Command, args []string) {
	fmt.Println(app.VersionWithCommit(app.GitCommit))
}
