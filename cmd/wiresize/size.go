package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wireschema/wireschema/pkg/maxsize"
)

func newSizeCmd(opts *rootOptions) *cobra.Command {
	var (
		maxDepth       int
		requireBounded bool
	)
	cmd := &cobra.Command{
		Use:   "size <document> [type...]",
		Short: "Print the maximum encoded size of each type",
		Long: `Print the maximum encoded size of the named types, or of every declared type
when none are named. Unbounded types are reported with the first part of the
descriptor that makes them unbounded.

Examples:
  wiresize size schema.toml
  wiresize size schema.yaml Packet Header --require-bounded`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, set, err := opts.load(args[0])
			if err != nil {
				return err
			}
			names := args[1:]
			if len(names) == 0 {
				names = set.Order
			}

			engine := set.Engine(maxsize.WithMaxDepth(maxDepth))
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			unbounded := 0
			for _, name := range names {
				nt, ok := set.Types[name]
				if !ok {
					return fmt.Errorf("no type %q in %s", name, args[0])
				}
				report := engine.Explain(nt)
				if !report.Bounded {
					unbounded++
				}
				opts.logger.Debug().Str("type", name).Bool("bounded", report.Bounded).Int("size", report.Size).Msg("sized type")
				fmt.Fprintf(tw, "%s\t%s\n", name, report)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if requireBounded && unbounded > 0 {
				return fmt.Errorf("%d of %d types are unbounded", unbounded, len(names))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", maxsize.DefaultMaxDepth, "nesting limit before a type is reported unbounded")
	cmd.Flags().BoolVar(&requireBounded, "require-bounded", false, "fail if any reported type is unbounded")
	return cmd
}
