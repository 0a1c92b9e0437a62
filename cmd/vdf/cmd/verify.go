package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyInput string
var verifyIterations uint64
var verifyDepth uint64

var verifyCmd = &cobra.Command{
	Use:   "verify <challenge> <proof>",
	Short: "Verifies an output and proof produced by prove",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		challenge, err := decode("challenge", args[0])
		if err != nil {
			return err
		}

		proof, err := decode("proof", args[1])
		if err != nil {
			return err
		}

		x, err := decodeInput(verifyInput)
		if err != nil {
			return err
		}

		if !Engine.Verify(challenge, x, proof, verifyIterations, verifyDepth) {
			fmt.Println("invalid")
			return errors.New("verification failed")
		}

		fmt.Println("valid")
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(
		&verifyInput,
		"input",
		"",
		"encoded starting element (default is the generator)",
	)
	verifyCmd.Flags().Uint64VarP(
		&verifyIterations,
		"iterations",
		"t",
		1000,
		"number of sequential squarings",
	)
	verifyCmd.Flags().Uint64Var(
		&verifyDepth,
		"depth",
		0,
		"number of intermediate segment proofs",
	)
	rootCmd.AddCommand(verifyCmd)
}
