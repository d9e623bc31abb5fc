package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/OrtegaSA/cqc-qhe-repo/gridsynth"
)

func gridsynthCommand() cli.Command {
	return cli.Command{
		Name:  "gridsynth",
		Usage: "manage and invoke the gridsynth rotation synthesizer",
		Subcommands: []cli.Command{
			{
				Name:  "install",
				Usage: "download the gridsynth binary for this platform",
				Flags: []cli.Flag{
					cli.BoolFlag{
						Name:  "yes,y",
						Usage: "skip the license prompt",
					},
				},
				Action: gridsynthInstall,
			},
			{
				Name:   "uninstall",
				Usage:  "remove the installed gridsynth binary",
				Action: gridsynthUninstall,
			},
			{
				Name:   "status",
				Usage:  "print the gridsynth install location and state",
				Action: gridsynthStatus,
			},
			{
				Name:  "synth",
				Usage: "synthesize one RZ angle to a Clifford+T sequence",
				Flags: []cli.Flag{
					cli.Float64Flag{
						Name:  "theta",
						Usage: "rotation angle in radians",
					},
					cli.Float64Flag{
						Name:  "epsilon",
						Usage: "approximation error (0 uses the binary default)",
					},
					cli.IntFlag{
						Name:  "digits",
						Usage: "approximation error as a count of decimal digits",
					},
					cli.Int64Flag{
						Name:  "seed",
						Usage: "seed of the synthesis algorithm",
					},
				},
				Action: gridsynthSynth,
			},
		},
	}
}

func gridsynthInstall(c *cli.Context) error {

	path, err := gridsynth.Path()
	if err != nil {
		return errors.Wrap(err, "cannot install gridsynth")
	}

	if gridsynth.Installed() {
		fmt.Printf("gridsynth is already installed at: %s\n", path)
		return nil
	}

	if !c.Bool("yes") {
		fmt.Println("This binary is licensed under GPL-3.0 and is not part of this software.")
		fmt.Print("Proceed with installation? [Y/n] (default: Y): ")

		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "cannot read the answer")
		}

		if choice := strings.ToLower(strings.TrimSpace(line)); choice != "" && choice != "y" {
			fmt.Println("Installation cancelled.")
			return nil
		}
	}

	fmt.Printf("Downloading gridsynth from: %s\n", gridsynth.DownloadURL())

	if err := gridsynth.Install(context.Background(), gridsynth.InstallOptions{}); err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot install gridsynth"), 1)
	}

	fmt.Printf("gridsynth installed at: %s\n", path)

	return nil
}

func gridsynthUninstall(c *cli.Context) error {

	path, err := gridsynth.Path()
	if err != nil {
		return errors.Wrap(err, "cannot uninstall gridsynth")
	}

	if err := gridsynth.Uninstall(); err != nil {
		if errors.Is(err, gridsynth.ErrNotInstalled) {
			fmt.Println("gridsynth is not installed.")
			return nil
		}
		return cli.NewExitError(errors.Wrap(err, "cannot uninstall gridsynth"), 1)
	}

	fmt.Printf("Removed gridsynth from: %s\n", path)

	return nil
}

func gridsynthStatus(c *cli.Context) error {

	path, err := gridsynth.Path()
	if err != nil {
		return errors.Wrap(err, "cannot resolve the gridsynth path")
	}

	if gridsynth.Installed() {
		fmt.Printf("installed at %s\n", path)
	} else {
		fmt.Printf("not installed, expected at %s\n", path)
	}

	return nil
}

func gridsynthSynth(c *cli.Context) error {

	if !c.IsSet("theta") {
		return cli.NewExitError("the --theta flag is required", 1)
	}

	synth := &gridsynth.Synthesizer{
		Epsilon: c.Float64("epsilon"),
		Digits:  c.Int("digits"),
	}

	if c.IsSet("seed") {
		seed := c.Int64("seed")
		synth.Seed = &seed
	}

	seq, err := synth.Synthesize(context.Background(), c.Float64("theta"))
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "cannot synthesize the rotation"), 1)
	}

	logger.Debug("synthesized",
		zap.Float64("theta", c.Float64("theta")),
		zap.Int("gates", len(seq)),
		zap.Int("tCount", seq.TCount()))

	fmt.Println(seq)

	return nil
}
