package main

import "source.quilibrium.com/quilibrium/monorepo/vdf/cmd/vdf/cmd"

func main() {
	cmd.Execute()
}
