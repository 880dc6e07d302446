// Package main is the entry point for the lnkgen command line tool and API server.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/oszuidwest/zwfm-lnkgen/pkg/logger"
	"github.com/oszuidwest/zwfm-lnkgen/pkg/version"
)

const usage = `usage: lnkgen <command> [flags]

commands:
  generate   generate route scripts for a job file (or the default batch)
  routes     list the route registry
  bin2dp     convert a firmware binary to a data port download payload
  bin2cp     convert a firmware binary to a control port download script
  migrate    apply (up) or revert (down) the archive schema
  serve      run the HTTP API
  version    print build information
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err := logger.Initialize(os.Getenv("LNKGEN_LOG_LEVEL"), false); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := cmd(os.Args[2:], os.Stdout); err != nil {
		logger.Error("%s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

var commands = map[string]func(args []string, out outWriter) error{
	"generate": runGenerate,
	"routes":   runRoutes,
	"bin2dp":   runBin2DP,
	"bin2cp":   runBin2CP,
	"migrate":  runMigrate,
	"serve":    runServe,
	"version": func(_ []string, out outWriter) error {
		_, err := fmt.Fprintln(out, version.String())
		return err
	},
}
