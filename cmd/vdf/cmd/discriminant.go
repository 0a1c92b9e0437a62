package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var discriminantCmd = &cobra.Command{
	Use:   "discriminant <seed>",
	Short: "Derives the discriminant for a seed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := decode("seed", args[0])
		if err != nil {
			return err
		}

		disc, err := Engine.CreateDiscriminant(seed)
		if err != nil {
			return err
		}

		fmt.Println(encode(disc))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discriminantCmd)
}
