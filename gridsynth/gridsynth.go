// Package gridsynth manages and drives the external gridsynth binary, which
// synthesizes Clifford+T approximations of RZ and phase rotations.
//
// The binary is part of the newsynth distribution and is licensed under
// GPL-3.0, separately from this module. It is installed per user under
// ~/.cqc_qhe/bin and is never bundled; see [Install].
package gridsynth

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/OrtegaSA/cqc-qhe-repo/utils/bignum"
)

const (
	binaryName  = "gridsynth"
	homeDirName = ".cqc_qhe"
	binDirName  = "bin"

	// EnvHome overrides the per-user directory holding the binary and the
	// rotation cache.
	EnvHome = "CQC_QHE_HOME"
)

var (
	// ErrNotInstalled is returned when an operation requires the gridsynth
	// binary and it is not present.
	ErrNotInstalled = errors.New("gridsynth is not installed")

	// ErrAlreadyInstalled is returned by [Install] when the binary is
	// already present.
	ErrAlreadyInstalled = errors.New("gridsynth is already installed")
)

// Home returns the per-user directory of the module, ~/.cqc_qhe by default.
// The CQC_QHE_HOME environment variable overrides it.
func Home() (string, error) {

	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot resolve the user home directory")
	}

	return filepath.Join(home, homeDirName), nil
}

// Path returns the expected location of the gridsynth binary for the current
// OS, whether or not it is installed.
func Path() (string, error) {

	home, err := Home()
	if err != nil {
		return "", err
	}

	name := binaryName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	return filepath.Join(home, binDirName, name), nil
}

// Installed reports whether the gridsynth binary is present at [Path].
func Installed() bool {

	path, err := Path()
	if err != nil {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// Synthesizer approximates RZ and phase rotations by Clifford+T gate
// sequences using the gridsynth binary. The zero value synthesizes with the
// binary defaults and no cache.
type Synthesizer struct {
	// Epsilon is the approximation error of each synthesized rotation. When
	// 0, Digits applies instead, and when both are unset the binary default
	// (1e-10) applies.
	Epsilon float64
	// Digits expresses the approximation error as 10^-Digits.
	Digits int
	// Seed seeds the gridsynth pseudo-random choices, making the output
	// deterministic. Nil leaves the binary seeding itself.
	Seed *int64
	// Path overrides the binary location. Empty means [Path].
	Path string
	// Cache, if set, memoizes synthesized sequences across calls and runs.
	Cache *Cache
}

// epsilon resolves the requested approximation error, 0 meaning the binary
// default.
func (s *Synthesizer) epsilon() float64 {

	if s.Epsilon > 0 {
		return s.Epsilon
	}

	if s.Digits > 0 {
		eps, _ := bignum.Pow(bignum.NewFloat(10, 64), bignum.NewFloat(-s.Digits, 64)).Float64()
		return eps
	}

	return 0
}

// binaryPath resolves the binary location and checks its presence.
func (s *Synthesizer) binaryPath() (string, error) {

	path := s.Path

	if path == "" {
		var err error
		if path, err = Path(); err != nil {
			return "", err
		}
	}

	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return "", ErrNotInstalled
	}

	return path, nil
}

// Synthesize runs gridsynth on the given angle, in radians, and returns the
// Clifford+T sequence approximating RZ(theta).
func (s *Synthesizer) Synthesize(ctx context.Context, theta float64) (Sequence, error) {

	path, err := s.binaryPath()
	if err != nil {
		return "", err
	}

	eps := s.epsilon()

	if s.Cache != nil {
		if seq, ok := s.Cache.Lookup(theta, eps, s.Seed); ok {
			return seq, nil
		}
	}

	args := []string{formatAngle(theta), "-p"}

	if eps > 0 {
		args = append(args, "-e", strconv.FormatFloat(eps, 'e', -1, 64))
	}

	if s.Seed != nil {
		args = append(args, "-r", strconv.FormatInt(*s.Seed, 10))
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Wrapf(err, "gridsynth: %s", msg)
		}
		return "", errors.Wrap(err, "gridsynth")
	}

	seq, err := ParseSequence(strings.TrimSpace(stdout.String()))
	if err != nil {
		return "", err
	}

	if s.Cache != nil {
		s.Cache.Store(theta, eps, s.Seed, seq)
	}

	return seq, nil
}

// formatAngle renders theta as the parenthesized radian expression gridsynth
// expects, e.g. "(0.7853981633974483)".
func formatAngle(theta float64) string {
	return "(" + strconv.FormatFloat(theta, 'g', -1, 64) + ")"
}
