// Package main implements cqc, the command line front end of the module. It
// manages the gridsynth binary, compiles circuit files to the Clifford+T gate
// set, samples them on the local simulator and runs quantum walks, plain or
// under homomorphic encryption.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/OrtegaSA/cqc-qhe-repo/circuit"
	"github.com/OrtegaSA/cqc-qhe-repo/gridsynth"
)

// VERSION is set through the linker at release time.
var VERSION = "SELFBUILD"

var logger = zap.NewNop()

func main() {

	app := cli.NewApp()
	app.Name = "cqc"
	app.Usage = "compile, encrypt and sample classical-quantum circuits"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "home",
			Usage:  "directory holding the gridsynth binary and the rotation cache",
			EnvVar: gridsynth.EnvHome,
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		if home := c.String("home"); home != "" {
			if err := os.Setenv(gridsynth.EnvHome, home); err != nil {
				return err
			}
		}

		config := zap.NewProductionConfig()
		if c.Bool("verbose") {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var err error
		if logger, err = config.Build(); err != nil {
			return fmt.Errorf("cannot initialize the logger: %w", err)
		}

		return nil
	}
	app.After = func(c *cli.Context) error {
		logger.Sync()
		return nil
	}
	app.Commands = []cli.Command{
		gridsynthCommand(),
		compileCommand(),
		runCommand(),
		walkCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readCircuit loads a serialized circuit from a file.
func readCircuit(path string) (*circuit.Circuit, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := circuit.NewCircuit()
	if _, err := c.ReadFrom(f); err != nil {
		return nil, err
	}

	return c, nil
}

// writeCircuit serializes a circuit to a file.
func writeCircuit(path string, c *circuit.Circuit) error {

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
