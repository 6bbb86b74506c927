package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabinet-platform/kernel/pkg/canonical"
)

var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize [file]",
	Short: "Rewrite JSON in canonical form",
	Long: `Read a JSON document (from the named file, or stdin when omitted)
and write its canonical encoding to stdout: keys sorted, no whitespace,
UTF-8, shortest number form. Equal logical inputs always produce identical
bytes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		out, err := canonical.EncodeBytes(data)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(canonicalizeCmd)
}
