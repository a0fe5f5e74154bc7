package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/sideeffffect/emil/message"
)

var oneCmd = &cobra.Command{
	Use:   "one message",
	Short: "Shows the diff of a single message round-trip",
	Args:  cobra.ExactArgs(1),
	Run:   RunOne,
}

func init() {
	rootCmd.AddCommand(oneCmd)
}

// RunOne parses the message, writes it back out, and prints a line diff of
// the original against the round-tripped bytes. Exit status 1 flags a
// difference.
func RunOne(cmd *cobra.Command, args []string) {
	path := args[0]
	orig, err := os.ReadFile(path)
	cobra.CheckErr(err)

	m, err := message.Parse(bytes.NewReader(orig), message.WithUnlimitedRecursion())
	cobra.CheckErr(err)

	var rt bytes.Buffer
	_, err = m.WriteTo(&rt)
	cobra.CheckErr(err)

	if bytes.Equal(orig, rt.Bytes()) {
		fmt.Printf("%s round-trips cleanly\n", path)
		return
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(orig), rt.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Printf("-%s\n", d.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Printf("+%s\n", d.Text)
		}
	}
	os.Exit(1)
}
