package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/coursecatalog/internal/cli"
	"github.com/mrlokans/coursecatalog/internal/config"
	"github.com/mrlokans/coursecatalog/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		if err := entrypoint.Run(cfg, Version); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "check":
		cmd = cli.NewCheckCommand(cfg)
	case "repair":
		cmd = cli.NewRepairCommand(cfg)
	case "init-data":
		cmd = cli.NewInitDataCommand(cfg)
	case "version":
		fmt.Printf("%s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve       Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  check       Verify the data files agree with each other\n")
	fmt.Fprintf(os.Stderr, "  repair      Rebuild the flat module and lesson files from the course tree\n")
	fmt.Fprintf(os.Stderr, "  init-data   Create missing data files\n")
	fmt.Fprintf(os.Stderr, "  version     Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
