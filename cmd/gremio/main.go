// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Command gremio hosts the skill-assessment engine: an HTTP server, an MCP
// stdio server, a local interactive chat loop, and a catalog linter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

const version = "0.1.0"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	switch args[0] {
	case "serve":
		runServe(ctx, global)
	case "mcp":
		runMCP(ctx, global)
	case "chat":
		runChat(ctx, global)
	case "validate":
		runValidate(global, args[1:])
	case "version":
		fmt.Println(version)
	case "help":
		printUsage()
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	flags := globalFlags{
		ConfigPath: os.Getenv("GREMIO_CONFIG"),
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch arg {
		case "-h", "--help":
			flags.Help = true
			return flags, nil, nil
		case "--json":
			flags.JSON = true
		case "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--config requires a path")
			}
			i++
			flags.ConfigPath = args[i]
		default:
			return flags, nil, fmt.Errorf("unknown flag %q", arg)
		}
	}
	return flags, nil, nil
}

func printUsage() {
	fmt.Println(`Gremio skill-assessment engine

Usage:
  gremio [global flags] <command> [args]

Global flags:
  --config <path>      Path to config.yaml (or GREMIO_CONFIG)
  --json               JSON output where supported

Commands:
  serve                Run the HTTP host
  mcp                  Run the MCP stdio host
  chat                 Interactive local assessment loop
  validate <catalog>   Lint a role catalog file
  version
  help`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
