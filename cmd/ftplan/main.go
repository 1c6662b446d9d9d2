// Command ftplan builds update plans for generated factor tables and reports
// what the cost model would choose.
//
//	ftplan plan --sizes 4,3,5,2 --density 0.3 --semiring min-sum
//	ftplan optimize --tables 16 --budget 65536 --verify
//	ftplan coefficients > coefficients.yaml
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	logger := logrus.New()
	logger.SetOutput(stderr)

	return &cli.App{
		Name:      "ftplan",
		Usage:     "factor table update planner",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "logrus level (debug, info, warn, error)",
				EnvVars: []string{"FTPLAN_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "log as JSON",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			if c.Bool("log-json") {
				logger.SetFormatter(&logrus.JSONFormatter{})
			}

			return nil
		},
		Commands: []*cli.Command{
			planCommand(),
			optimizeCommand(logger),
			coefficientsCommand(),
		},
	}
}
