package main

import (
	"context"
	"fmt"

	buildinfo "github.com/kbukum/webrequest/version"
)

const versionUsage = `
Usage:	webreq version

Options:
   -h, --help  Show this usage information
`

func version(ctx context.Context, args []string) error {
	flagSet := newFlagSet("webreq version", versionUsage)
	if _, err := parseFlags(flagSet, args); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "webreq %s\n", buildinfo.Short())
	return nil
}
