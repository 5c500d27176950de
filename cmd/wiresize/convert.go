package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wireschema/wireschema/internal/schemadoc"
)

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "convert <document> -o <output>",
		Short: "Re-encode a document as TOML, YAML or CBOR",
		Long: `Re-encode a document. Both formats are taken from the file extensions
(.toml, .yaml, .yml, .cbor). The document is compiled first, so only valid
documents are written. CBOR output is canonical.

Examples:
  wiresize convert schema.toml -o schema.cbor`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("missing --output")
			}
			doc, _, err := opts.load(args[0])
			if err != nil {
				return err
			}
			if err := schemadoc.Save(out, doc); err != nil {
				return err
			}
			opts.logger.Info().Str("from", args[0]).Str("to", out).Msg("converted document")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path")
	return cmd
}
