package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompressLookupDump(t *testing.T) {
	dir := t.TempDir()
	dic := filepath.Join(dir, "fr.dic")
	require.NoError(t, os.WriteFile(dic, []byte("chat,.N:ms\nchats,chat.N:mp\nchat,.V:W\n"), 0o644))

	out, err := execute(t, "compress", "--encoding=utf8", "--workers=1", "--log-level=error", dic)
	require.NoError(t, err)
	require.Contains(t, out, "3 lines read, 2 INF entries created")

	bin := filepath.Join(dir, "fr.bin")
	inf := filepath.Join(dir, "fr.inf")
	require.FileExists(t, bin)
	require.FileExists(t, inf)

	out, err = execute(t, "lookup", "--encoding=utf8", bin, inf, "chat", "chats", "chien")
	require.NoError(t, err)
	require.Equal(t, "chat,.N:ms\nchat,.V:W\nchats,chat.N:mp\nchien: not found\n", out)

	out, err = execute(t, "dump", bin)
	require.NoError(t, err)
	require.Contains(t, out, "Size=")
	require.Contains(t, out, "6 nodes, 5 edges")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, `"version": "dev"`)
}

func TestCompressMissingDictionary(t *testing.T) {
	_, err := execute(t, "compress", "--log-level=error", filepath.Join(t.TempDir(), "missing.dic"))
	require.Error(t, err)
}
