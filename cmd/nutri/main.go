package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	_ "time/tzdata"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "chat": true, "parse": true,
	"food": true, "config": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false // No args → MCP server
	}
	arg := args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	arg := args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _   _       _        _
  | \ | |_   _| |_ _ __(_)
  |  \| | | | | __| '__| |
  | |\  | |_| | |_| |  | |
  |_| \_|\__,_|\__|_|  |_|

  Daily macro tracker

  Usage: nutri <command> [options]
         nutri chat     talk to the tracker in the terminal
         nutri serve    MCP server, reminders and web UI
         nutri --help

  MCP server mode requires piped input.`)
}

// baseDir returns $NUTRI_HOME or ~/.nutri.
func baseDir() (string, error) {
	if dir := os.Getenv("NUTRI_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".nutri"), nil
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion(os.Args) {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode(os.Args) && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'nutri --help' for usage.\n")
		os.Exit(1)
	}

	dir, err := baseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	a, err := openApp(context.Background(), dir, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	args := os.Args
	if !isCLIMode(args) {
		// MCP server mode (default)
		args = []string{args[0], "serve"}
	}

	if err := newCLIApp(a).Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		a.Close()
		os.Exit(1)
	}
}
