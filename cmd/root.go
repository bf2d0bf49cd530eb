package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sergev/flux2hfe/config"
	"github.com/sergev/flux2hfe/convert"
	"github.com/sergev/flux2hfe/decoder"
)

// globalOptions hold the flags shared by all commands.
type globalOptions struct {
	configPath string
	bufferSize int
	logLevel   string
	logFormat  string

	conf   *config.Config
	logger *slog.Logger
}

// addGlobalFlags registers the persistent flags.
func addGlobalFlags(fs *pflag.FlagSet, opts *globalOptions) {
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default ~/"+config.FileName+" or built-in)")
	fs.IntVar(&opts.bufferSize, "buffer-size", 0, "bitcell buffer size in bytes, a power of two")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "", "log format: auto, text or json")
}

// applyFlags overrides configuration with the flags given on the command line.
func (opts *globalOptions) applyFlags(fs *pflag.FlagSet) error {
	if fs.Changed("buffer-size") {
		opts.conf.BufferSize = opts.bufferSize
	}
	if fs.Changed("log-level") {
		opts.conf.LogLevel = opts.logLevel
	}
	if fs.Changed("log-format") {
		opts.conf.LogFormat = opts.logFormat
	}
	return opts.conf.Validate()
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "flux2hfe SAMPLES DEST.hfe [KBPS] [ALGORITHM]",
		Short: "Convert captured flux samples into an HFE floppy image",
		Long: "The flux2hfe tool decodes a file of 16-bit flux transition intervals, sampled at 72 MHz,\n" +
			"into bitcells and stores them as a single-track HFE v1 image.\n" +
			"KBPS and ALGORITHM default to the configured values; run `flux2hfe algorithms` for the list.\n" +
			"An HFE track holds at most 32767 bytes of bitcells; longer captures are rejected.",
		Args:          cobra.RangeArgs(2, 4),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.conf = conf
			if err := opts.applyFlags(cmd.Flags()); err != nil {
				return err
			}
			opts.logger, err = newLogger(conf.LogLevel, conf.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.logger.Debug("configuration loaded", "source", conf.Source)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args)
		},
	}
	addGlobalFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(newAlgorithmsCmd())
	rootCmd.AddCommand(newInspectCmd())
	return rootCmd
}

// runConvert handles SAMPLES DEST.hfe [KBPS] [ALGORITHM].
func runConvert(opts *globalOptions, args []string) error {
	bitRate := opts.conf.BitRate
	if len(args) > 2 {
		v, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid bit rate %q: %w", args[2], err)
		}
		bitRate = uint(v)
	}
	algorithm := opts.conf.Algorithm
	if len(args) > 3 {
		algorithm = args[3]
	}

	_, err := convert.Run(convert.Options{
		SamplesPath: args[0],
		OutputPath:  args[1],
		BitRateKbps: bitRate,
		Algorithm:   algorithm,
		BufferSize:  opts.conf.BufferSize,
		Registry:    decoder.Default(),
		Logger:      opts.logger,
	})
	return err
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(newRootCmd().Execute())
}
