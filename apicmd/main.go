package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/gcnwokike/API-Commander/apicmd/cli"
	"github.com/gcnwokike/API-Commander/apicmd/config"
	"github.com/gcnwokike/API-Commander/apicmd/send"
	"github.com/gcnwokike/API-Commander/apicmd/service"
	"github.com/gcnwokike/API-Commander/apicmd/sessions"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printRootUsage()
		return 1
	}

	var err error
	switch args[0] {
	case "send":
		err = send.Parse(args[1:])
	case "session":
		err = sessions.Parse(args[1:])
	case "serve":
		err = service.Parse(args[1:])
	case "version", "--version", "-v":
		fmt.Printf("apicmd version %s\n", config.Version)
		return 0
	case "help", "--help", "-h":
		printRootUsage()
		return 0
	default:
		validCommands := []string{"send", "session", "serve", "version", "help"}
		err = cli.UnknownCommandError(args[0], validCommands)
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printRootUsage() {
	fmt.Fprint(os.Stderr, `Usage: apicmd <command> [options]

Compose, send, and manage HTTP requests from persistent sessions.

Commands:
  send       Send the active session's request (with optional overrides)
  session    Manage saved request sessions
  serve      Run the MCP server for agent access

Use "apicmd <command> --help" for specific command usage.
`)
}
