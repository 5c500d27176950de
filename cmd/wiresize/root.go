package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wireschema/wireschema/internal/logging"
	"github.com/wireschema/wireschema/internal/schemadoc"
)

type rootOptions struct {
	logLevel string
	jsonLogs bool
	logger   zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "wiresize",
		Short: "Worst-case encoded sizes for wire descriptors",
		Long: `wiresize reads descriptor documents (TOML, YAML or CBOR) and reports the
largest number of bytes any value of each declared type can occupy on the
wire, or why no such bound exists.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{
				Level: opts.logLevel,
				JSON:  opts.jsonLogs,
				Out:   cmd.ErrOrStderr(),
				App:   "wiresize",
			})
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json", false, "write logs as JSON lines")

	cmd.AddCommand(newSizeCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newConvertCmd(opts))
	return cmd
}

// load reads and compiles a document, logging what it found.
func (o *rootOptions) load(path string) (schemadoc.Document, *schemadoc.Set, error) {
	doc, err := schemadoc.Load(path)
	if err != nil {
		return schemadoc.Document{}, nil, err
	}
	set, err := schemadoc.Compile(doc, schemadoc.WithLogger(o.logger))
	if err != nil {
		return schemadoc.Document{}, nil, err
	}
	o.logger.Info().Str("path", path).Int("types", len(set.Order)).Int("overrides", len(set.Overrides)).Msg("loaded document")
	return doc, set, nil
}
