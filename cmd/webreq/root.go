package main

// Each subcommand is implemented by a function named after the command, in a
// file of the same name. Its usage message is the constant <command>Usage.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const rootUsage = `webreq - HTTP requests from the command line

   webreq sends HTTP requests with the webrequest client and prints the
   response. It can also run a local echo server to inspect what a client
   sends.

Example:

   $ webreq get https://example.com -i
   HTTP/1.1 200 OK
   ...

   $ webreq serve --port 8080

Commands:
   get, head, post, put, patch, delete  Send a request with that method
   json                                 Send a JSON request and pretty-print the reply
   serve                                Run the echo server
   version                              Print the version
   help                                 Show this usage information`

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	configPath string
)

// root is the webreq entrypoint.
func root(ctx context.Context, args ...string) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, rootUsage)
		return 0
	}
	cmd, args := args[0], args[1:]

	var err error
	switch cmd {
	case "get", "head", "post", "put", "patch", "delete":
		err = request(ctx, cmd, args)
	case "json":
		err = jsonRequest(ctx, args)
	case "serve":
		err = serve(ctx, args)
	case "version":
		err = version(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, rootUsage)
	default:
		err = usageError("webreq %s: unknown command\nFor a list of commands available, run 'webreq help'.", cmd)
	}

	var code exitCode
	var use usage
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	case errors.As(err, &use):
		fmt.Fprintln(stderr, use)
		return 2
	default:
		fmt.Fprintf(stderr, "ERR: webreq %s: %s\n", cmd, err)
		return 1
	}
}

// exitCode is returned by commands that want a specific exit status.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit: %d", int(e))
}

// usage errors exit with status 2.
type usage string

func usageError(msg string, args ...any) error {
	return usage(fmt.Sprintf(msg, args...))
}

func (e usage) Error() string {
	return string(e)
}

func newFlagSet(cmd, usage string) *pflag.FlagSet {
	usage = strings.TrimSpace(usage)
	flagSet := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() { fmt.Fprintln(stdout, usage) }
	flagSet.StringVarP(&configPath, "config", "c", "", "")
	return flagSet
}

// parseFlags parses args and returns the positional arguments. A help flag
// yields exitCode(0) after printing the usage.
func parseFlags(f *pflag.FlagSet, args []string) ([]string, error) {
	if err := f.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, exitCode(0)
		}
		return nil, usageError("%s: %s", f.Name(), err)
	}
	return f.Args(), nil
}
