package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/vdf/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.GetVersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
