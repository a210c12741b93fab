package compress

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dawg "github.com/milden6/dawgdic"
	"github.com/milden6/dawgdic/codes"
	"github.com/milden6/dawgdic/dela"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const dictionary = "chat,.N:ms\n" +
	"chats,chat.N:mp\n" +
	"/ the verb\n" +
	"chat,.V:W\n" +
	"pomme=de=terre,.N:fs\n" +
	"bad\n"

func lookup(t *testing.T, result *Result, form string) (string, bool) {
	t.Helper()
	a, err := dawg.Read(bytes.NewReader(result.Bin))
	require.NoError(t, err)
	line, ok, err := a.Lookup(form)
	require.NoError(t, err)
	if !ok {
		return "", false
	}
	return result.Lines[line], true
}

func TestCompile(t *testing.T) {
	result, err := Compile(context.Background(), strings.NewReader(dictionary), Options{Encoding: unicode.UTF8})
	require.NoError(t, err)

	require.Equal(t, 6, result.Stats.Lines)
	require.Equal(t, 5, result.Stats.Entries)
	require.Equal(t, 1, result.Stats.Rejected)
	require.Equal(t, 5, result.Stats.Codes)
	require.Equal(t, 3, result.Stats.UsedCodes)
	require.Len(t, result.Lines, 3)
	require.Equal(t, int64(len(result.Bin)), result.Stats.Size)

	info, ok := lookup(t, result, "chat")
	require.True(t, ok)
	require.Equal(t, ".N:ms,.V:W", info)
	require.Equal(t, []string{".N:ms", ".V:W"}, codes.SplitLine(info))

	info, ok = lookup(t, result, "chats")
	require.True(t, ok)
	line, err := dela.Uncompress("chats", info)
	require.NoError(t, err)
	require.Equal(t, "chats,chat.N:mp", line)

	for _, form := range []string{"pomme de terre", "pomme-de-terre"} {
		info, ok = lookup(t, result, form)
		require.True(t, ok, form)
		require.Equal(t, ".N:fs", info)
	}

	_, ok = lookup(t, result, "pomme=de=terre")
	require.False(t, ok)
}

func TestCompileFlip(t *testing.T) {
	result, err := Compile(context.Background(), strings.NewReader("mains,main.N:fp\n"), Options{
		Encoding: unicode.UTF8,
		Flip:     true,
	})
	require.NoError(t, err)

	info, ok := lookup(t, result, "main")
	require.True(t, ok)
	require.Equal(t, "0s.N:fp", info)

	_, ok = lookup(t, result, "mains")
	require.False(t, ok)
}

func TestCompileEmpty(t *testing.T) {
	result, err := Compile(context.Background(), strings.NewReader(""), Options{Encoding: unicode.UTF8})
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 6, 0x80, 0}, result.Bin)
	require.Empty(t, result.Lines)
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compile(ctx, strings.NewReader(dictionary), Options{Encoding: unicode.UTF8})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestCompileHeightCeiling(t *testing.T) {
	_, err := Compile(context.Background(), strings.NewReader("abcd,.N\n"), Options{
		Encoding:  unicode.UTF8,
		MaxHeight: 3,
	})
	require.True(t, errors.Is(err, dawg.ErrHeightExceeded))
}

func writeDictionary(t *testing.T, path, text string) {
	t.Helper()
	enc, err := dela.LookupEncoding("utf16le")
	require.NoError(t, err)
	data, err := enc.NewEncoder().String(text)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fr.dic")
	writeDictionary(t, path, dictionary)

	stats, err := CompileFile(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Equal(t, path, stats.Dictionary)

	binPath, infPath := OutputPaths(path, "")
	require.Equal(t, filepath.Join(dir, "fr.bin"), binPath)

	a, err := dawg.Load(binPath)
	require.NoError(t, err)
	defer a.Close()
	require.Equal(t, stats.Size, a.Size())

	f, err := os.Open(infPath)
	require.NoError(t, err)
	defer f.Close()
	enc, err := dela.LookupEncoding("utf16le")
	require.NoError(t, err)
	lines, err := codes.ReadINF(f, enc)
	require.NoError(t, err)
	require.Len(t, lines, stats.UsedCodes)

	line, ok, err := a.Lookup("chat")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ".N:ms,.V:W", lines[line])
}

func TestCompileFileOutDir(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	path := filepath.Join(dir, "en.dic")
	writeDictionary(t, path, "cats,cat.N:p\n")

	_, err := CompileFile(context.Background(), path, Options{OutDir: out})
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(out, "en.bin"))
	require.FileExists(t, filepath.Join(out, "en.inf"))
	require.NoFileExists(t, filepath.Join(dir, "en.bin"))
}

func TestCompileAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.dic", "b.dic", "c.dic"} {
		path := filepath.Join(dir, name)
		writeDictionary(t, path, strings.TrimSuffix(name, ".dic")+",.N\n")
		paths = append(paths, path)
	}

	stats, err := CompileAll(context.Background(), paths, Options{}, 2)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	for i, s := range stats {
		require.Equal(t, paths[i], s.Dictionary)
		require.Equal(t, 1, s.Entries)
		require.FileExists(t, strings.TrimSuffix(paths[i], ".dic")+".bin")
	}

	_, err = CompileAll(context.Background(), append(paths, filepath.Join(dir, "missing.dic")), Options{}, 0)
	require.Error(t, err)
}
