package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jorgekof/hostreamly-admin/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "hostreamly-admin",
		Usage:   "admin API for overage billing, payment provider settings and system logs",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "config environment, loads config/<env>.yaml",
				Value:   "local",
				EnvVars: []string{"ENV"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "check-credential",
				Usage:  "test the stored or configured provider secret key",
				Action: checkCredential,
			},
			{
				Name:  "overage",
				Usage: "print the current overage charges of an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Aliases: []string{"a"}, Required: true},
				},
				Action: overage,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
