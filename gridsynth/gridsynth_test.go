package gridsynth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {

	home := t.TempDir()
	t.Setenv(EnvHome, home)

	path, err := Path()
	require.NoError(t, err)
	require.Equal(t, home, filepath.Dir(filepath.Dir(path)))
	require.False(t, Installed())

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0o755))
	require.True(t, Installed())
}

func TestInstall(t *testing.T) {

	t.Setenv(EnvHome, t.TempDir())

	payload := []byte("#!/bin/sh\necho I\n")

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(payload)
	}))
	defer srv.Close()

	ctx := context.Background()

	require.False(t, Installed())
	require.ErrorIs(t, Uninstall(), ErrNotInstalled)

	require.NoError(t, Install(ctx, InstallOptions{BaseURL: srv.URL}))
	require.True(t, Installed())
	require.Equal(t, downloadURL("", runtime.GOOS), gotPath)

	path, err := Path()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, data)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.NotZero(t, info.Mode()&0o111)
	}

	require.ErrorIs(t, Install(ctx, InstallOptions{BaseURL: srv.URL}), ErrAlreadyInstalled)

	require.NoError(t, Uninstall())
	require.False(t, Installed())
}

func TestInstallBadStatus(t *testing.T) {

	t.Setenv(EnvHome, t.TempDir())

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	err := Install(context.Background(), InstallOptions{BaseURL: srv.URL})
	require.Error(t, err)
	require.False(t, Installed())
}

// fakeBinary writes a shell script standing in for gridsynth. The script
// records its arguments in argsFile, appends a line to logFile and prints
// the given sequence.
func fakeBinary(t *testing.T, dir, seq string) (bin, argsFile, logFile string) {

	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	bin = filepath.Join(dir, "gridsynth")
	argsFile = filepath.Join(dir, "args")
	logFile = filepath.Join(dir, "log")

	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" > %q\necho run >> %q\necho '%s'\n", argsFile, logFile, seq)

	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	return
}

func TestSynthesize(t *testing.T) {

	bin, argsFile, _ := fakeBinary(t, t.TempDir(), "HTSHT")

	ctx := context.Background()

	t.Run("NotInstalled", func(t *testing.T) {
		t.Setenv(EnvHome, t.TempDir())
		s := &Synthesizer{}
		_, err := s.Synthesize(ctx, 0.5)
		require.ErrorIs(t, err, ErrNotInstalled)
	})

	t.Run("EpsilonAndSeed", func(t *testing.T) {

		seed := int64(7)
		s := &Synthesizer{Epsilon: 1e-3, Seed: &seed, Path: bin}

		seq, err := s.Synthesize(ctx, 0.5)
		require.NoError(t, err)
		require.Equal(t, Sequence("HTSHT"), seq)

		args, err := os.ReadFile(argsFile)
		require.NoError(t, err)
		require.Equal(t, "(0.5) -p -e 1e-03 -r 7", strings.TrimSpace(string(args)))
	})

	t.Run("Digits", func(t *testing.T) {

		s := &Synthesizer{Digits: 4, Path: bin}

		_, err := s.Synthesize(ctx, 0.5)
		require.NoError(t, err)

		args, err := os.ReadFile(argsFile)
		require.NoError(t, err)
		require.Equal(t, "(0.5) -p -e 1e-04", strings.TrimSpace(string(args)))
	})

	t.Run("Defaults", func(t *testing.T) {

		s := &Synthesizer{Path: bin}

		_, err := s.Synthesize(ctx, 0.5)
		require.NoError(t, err)

		args, err := os.ReadFile(argsFile)
		require.NoError(t, err)
		require.Equal(t, "(0.5) -p", strings.TrimSpace(string(args)))
	})
}

func TestSynthesizeCached(t *testing.T) {

	dir := t.TempDir()
	bin, _, logFile := fakeBinary(t, dir, "TST")

	cache := NewCache(filepath.Join(dir, "rotations.bin"))
	s := &Synthesizer{Epsilon: 1e-2, Path: bin, Cache: cache}

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seq, err := s.Synthesize(ctx, 1.25)
		require.NoError(t, err)
		require.Equal(t, Sequence("TST"), seq)
	}

	log, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(log), "run"))
	require.Equal(t, 1, cache.Len())
}
