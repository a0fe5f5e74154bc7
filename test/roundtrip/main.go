package main

import (
	"github.com/spf13/cobra"

	"github.com/sideeffffect/emil/test/roundtrip/cmd"
)

func main() {
	err := cmd.Execute()
	cobra.CheckErr(err)
}
