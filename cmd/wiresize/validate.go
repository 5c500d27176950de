package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <document>",
		Short: "Check that a document compiles to valid descriptors",
		Long: `Resolve every type reference in the document and check the resulting
descriptors: known kinds, max_len only on strings, bytes, seqs and maps, and
unique field and variant names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, set, err := opts.load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d types, %d size overrides\n", args[0], len(set.Order), len(set.Overrides))
			return nil
		},
	}
}
