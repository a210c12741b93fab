// Package compress turns DELAF dictionaries into .bin/.inf pairs.
package compress

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/dustin/go-humanize"
	dawg "github.com/milden6/dawgdic"
	"github.com/milden6/dawgdic/codes"
	"github.com/milden6/dawgdic/dela"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
)

const progressEvery = 10000

// Options controls a compilation.
type Options struct {
	// Flip swaps inflected forms and lemmas before insertion.
	Flip bool
	// Encoding of the dictionary and of the .inf file. Defaults to
	// UTF-16 little-endian with a byte order mark.
	Encoding encoding.Encoding
	// MaxHeight and MaxNodes bound the automaton, see dawg.WithMaxHeight
	// and dawg.WithMaxNodes.
	MaxHeight int
	MaxNodes  int
	// OutDir receives the output files of CompileFile. Empty means next
	// to the dictionary.
	OutDir string
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Encoding == nil {
		o.Encoding, _ = dela.LookupEncoding("")
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Stats describes a compiled dictionary.
type Stats struct {
	Dictionary  string
	Lines       int
	Entries     int
	Rejected    int
	Codes       int
	UsedCodes   int
	Nodes       int
	Transitions int
	Size        int64
	Elapsed     time.Duration
}

// Result holds a compiled dictionary: the automaton and the lines of its
// .inf file.
type Result struct {
	Bin   []byte
	Lines []string
	Stats Stats
}

// Compile reads a DELAF dictionary from src and compiles it. Lines that
// do not parse are logged and skipped. Nothing is returned if ctx is
// cancelled before the end.
func Compile(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger
	start := time.Now()

	table := codes.NewTable()
	d := dawg.New(table,
		dawg.WithLogger(log),
		dawg.WithMaxHeight(opts.MaxHeight),
		dawg.WithMaxNodes(opts.MaxNodes),
	)

	var stats Stats
	r := dela.NewReader(src, opts.Encoding, log)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, dela.ErrBadLine) {
			stats.Rejected++
			log.Warn("skipping line", zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}

		if opts.Flip {
			e.Flip()
		}
		for _, variant := range e.Expand() {
			if err := d.Insert(variant.Inflected, dela.CompressLine(variant)); err != nil {
				return nil, errors.WithMessagef(err, "line %d", r.Line())
			}
			stats.Entries++
		}

		if r.Line()%progressEvery == 0 {
			log.Debug("compressing", zap.String("lines", humanize.Comma(int64(r.Line()))))
		}
	}
	stats.Lines = r.Line()
	stats.Codes = table.Len()
	stats.Nodes = d.NumNodes()
	stats.Transitions = d.NumTransitions()
	log.Info("trie built",
		zap.String("lines", humanize.Comma(int64(stats.Lines))),
		zap.String("entries", humanize.Comma(int64(stats.Entries))),
		zap.Int("nodes", stats.Nodes),
		zap.Int("transitions", stats.Transitions),
	)

	used := bitset.New(uint(table.Len()))
	if err := d.Minimize(used); err != nil {
		return nil, err
	}
	lines := table.Compact(used)

	var buffer bytes.Buffer
	size, err := d.Write(&buffer, lines)
	if err != nil {
		return nil, err
	}

	stats.UsedCodes = lines.Len()
	stats.Nodes = d.NumNodes()
	stats.Transitions = d.NumTransitions()
	stats.Size = size
	stats.Elapsed = time.Since(start)
	log.Info("dictionary compiled",
		zap.Int("inf_lines", stats.UsedCodes),
		zap.Int("states", stats.Nodes),
		zap.Int("transitions", stats.Transitions),
		zap.String("size", humanize.Bytes(uint64(size))),
		zap.Duration("elapsed", stats.Elapsed),
	)

	return &Result{Bin: buffer.Bytes(), Lines: lines.Lines(), Stats: stats}, nil
}

// OutputPaths returns the .bin and .inf files CompileFile writes for the
// dictionary at path.
func OutputPaths(path, outDir string) (bin, inf string) {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".bin"), filepath.Join(dir, base+".inf")
}

// CompileFile compiles the dictionary at path and writes its .bin and
// .inf files. Files are only written once compilation succeeded.
func CompileFile(ctx context.Context, path string, opts Options) (*Stats, error) {
	opts = opts.withDefaults()
	opts.Logger = opts.Logger.With(zap.String("dictionary", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dictionary")
	}
	defer f.Close()

	result, err := Compile(ctx, f, opts)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}

	binPath, infPath := OutputPaths(path, opts.OutDir)
	if err := os.WriteFile(binPath, result.Bin, 0o644); err != nil {
		return nil, errors.Wrap(err, "write bin")
	}
	if err := writeINF(infPath, result.Lines, opts.Encoding); err != nil {
		_ = os.Remove(binPath)
		return nil, err
	}

	result.Stats.Dictionary = path
	opts.Logger.Info("files written", zap.String("bin", binPath), zap.String("inf", infPath))
	return &result.Stats, nil
}

func writeINF(path string, lines []string, enc encoding.Encoding) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create inf")
	}
	if err := codes.WriteINF(f, lines, enc); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return errors.Wrap(f.Close(), "close inf")
}

// CompileAll compiles several dictionaries, at most workers at a time
// (no limit if workers <= 0). The first error cancels the remaining
// compilations. Stats are returned in the order of paths.
func CompileAll(ctx context.Context, paths []string, opts Options, workers int) ([]Stats, error) {
	stats := make([]Stats, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i, path := range paths {
		eg.Go(func() error {
			s, err := CompileFile(egCtx, path, opts)
			if err != nil {
				return err
			}
			stats[i] = *s
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
