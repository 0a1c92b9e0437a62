package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var proveInput string
var proveIterations uint64
var proveDepth uint64

var proveCmd = &cobra.Command{
	Use:   "prove <challenge>",
	Short: "Evaluates the delay function and prints the output and proof",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		challenge, err := decode("challenge", args[0])
		if err != nil {
			return err
		}

		x, err := decodeInput(proveInput)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		proof, err := Engine.ProveContext(
			ctx,
			challenge,
			x,
			proveIterations,
			proveDepth,
		)
		if err != nil {
			return err
		}

		fmt.Println(encode(proof))
		return nil
	},
}

func init() {
	proveCmd.Flags().StringVar(
		&proveInput,
		"input",
		"",
		"encoded starting element (default is the generator)",
	)
	proveCmd.Flags().Uint64VarP(
		&proveIterations,
		"iterations",
		"t",
		1000,
		"number of sequential squarings",
	)
	proveCmd.Flags().Uint64Var(
		&proveDepth,
		"depth",
		0,
		"number of intermediate segment proofs",
	)
	rootCmd.AddCommand(proveCmd)
}
