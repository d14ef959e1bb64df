// ipmatch tests IP addresses against range lists and resolves client
// addresses from connection and proxy header values.
//
// Usage:
//
//	ipmatch [global options] <command> [arguments]
//
// Global options:
//
//	-c, --config   YAML or JSON configuration file (.yaml, .yml, .json)
//	-v, --verbose  log debug output and skipped ranges to stderr
//
// Commands:
//
//	check <ip>...        report whether each address is in the configured ranges
//	validate <text>...   print the IP version of each value, or "invalid"
//	describe <range>...  print the kind and canonical form of each range
//	resolve              resolve the client address from connection and headers
//
// Exit codes:
//
//	0: success (check: every address matched)
//	1: failure (check: at least one address did not match; validate: invalid input)
//	2: usage error (missing arguments, unknown flags or commands, bad config)
//
// Examples:
//
//	ipmatch check --ranges "10.,192.168.0.0/16" 10.1.2.3
//	ipmatch check --preset local 127.0.0.1 ::1
//	ipmatch describe 10.0.0.0/255.0.0.0 "192.168.1.1 - 192.168.1.9"
//	ipmatch resolve --remote-addr 10.0.0.5 --forwarded-for "75.184.124.93" --allow-override
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
)

// Version information, injected with -ldflags:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args, os.Stdout, os.Stderr))
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "ipmatch",
		Usage:     "match IP addresses against range lists and resolve client addresses",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML or JSON configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output to stderr",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// run maps errors to exit codes; urfave/cli must not call os.Exit.
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)

	if err := app.Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "usage error: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			fmt.Fprintf(stderr, "usage error: %v\n", err)
			return 2
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

// isCLIUsageError reports whether err was produced by flag or command
// parsing in urfave/cli.
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"invalid value",
		"flag needs an argument",
		"No help topic for",
	} {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}
