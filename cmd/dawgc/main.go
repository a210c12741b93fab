package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	dawg "github.com/milden6/dawgdic"
	"github.com/milden6/dawgdic/codes"
	"github.com/milden6/dawgdic/compress"
	"github.com/milden6/dawgdic/dela"
	"github.com/milden6/dawgdic/internal/config"
	"github.com/milden6/dawgdic/internal/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "dawgc",
	Short:         "dawgc compiles DELAF dictionaries into minimal automata",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var compressCmd = &cobra.Command{
	Use:   "compress <dictionary>...",
	Short: "Compile dictionaries into .bin and .inf files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompress,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <bin>",
	Short: "Print the nodes of a .bin file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return dawg.DumpFile(cmd.OutOrStdout(), f)
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <bin> <inf> <form>...",
	Short: "Look up forms in a compiled dictionary",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runLookup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file (toml, yaml or json)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	flags := compressCmd.Flags()
	flags.Bool("flip", false, "swap inflected forms and lemmas")
	flags.String("encoding", "utf16le", "encoding of the dictionaries and .inf files (utf16le, utf16be, utf8)")
	flags.Int("workers", 0, "number of dictionaries compiled at the same time (default number of CPUs)")
	flags.Int("max-height", dawg.DefaultMaxHeight, "longest accepted form, in UTF-16 code units")
	flags.Int("max-nodes", 0, "maximum number of automaton nodes (0 means no limit)")
	flags.String("out-dir", "", "directory of the output files (default next to each dictionary)")

	lookupCmd.Flags().String("encoding", "utf16le", "encoding of the .inf file")

	rootCmd.AddCommand(compressCmd, dumpCmd, lookupCmd, versionCmd)
}

// setup loads the configuration, with the flags of cmd taking precedence,
// and creates the logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := log.NewLog(&cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runCompress(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	enc, err := dela.LookupEncoding(cfg.Compress.Encoding)
	if err != nil {
		return err
	}
	if cfg.Compress.OutDir != "" {
		if err := os.MkdirAll(cfg.Compress.OutDir, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}

	opts := compress.Options{
		Flip:      cfg.Compress.Flip,
		Encoding:  enc,
		MaxHeight: cfg.Compress.MaxHeight,
		MaxNodes:  cfg.Compress.MaxNodes,
		OutDir:    cfg.Compress.OutDir,
		Logger:    logger,
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("compressing", zap.Int("dictionaries", len(args)), zap.Int("workers", cfg.Compress.Workers))
	all, err := compress.CompileAll(ctx, args, opts, cfg.Compress.Workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, stats := range all {
		bin, inf := compress.OutputPaths(stats.Dictionary, cfg.Compress.OutDir)
		fmt.Fprintf(out, "%s: %s lines read, %s INF entries created\n",
			stats.Dictionary, humanize.Comma(int64(stats.Lines)), humanize.Comma(int64(stats.UsedCodes)))
		if stats.Rejected > 0 {
			fmt.Fprintf(out, "  %d malformed lines skipped\n", stats.Rejected)
		}
		fmt.Fprintf(out, "  %d states, %d transitions\n", stats.Nodes, stats.Transitions)
		fmt.Fprintf(out, "  %s (%s), %s\n", bin, humanize.Bytes(uint64(stats.Size)), inf)
	}
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	encName, _ := cmd.Flags().GetString("encoding")
	enc, err := dela.LookupEncoding(encName)
	if err != nil {
		return err
	}

	a, err := dawg.Load(args[0])
	if err != nil {
		return errors.WithMessage(err, args[0])
	}
	defer a.Close()

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	lines, err := codes.ReadINF(f, enc)
	f.Close()
	if err != nil {
		return errors.WithMessage(err, args[1])
	}

	out := cmd.OutOrStdout()
	for _, form := range args[2:] {
		line, ok, err := a.Lookup(form)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "%s: not found\n", form)
			continue
		}
		if line >= len(lines) {
			return errors.Wrapf(dawg.ErrBadFormat, "line %d of %q is not in %s", line, form, args[1])
		}
		for _, info := range codes.SplitLine(lines[line]) {
			entry, err := dela.Uncompress(form, info)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, entry)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "dawgc:", err)
		os.Exit(1)
	}
}
