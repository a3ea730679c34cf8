package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/webrequest/echoserver"
	"github.com/kbukum/webrequest/logger"
)

const serveUsage = `
Usage:	webreq serve [options]

   Runs the echo server until interrupted. Requests to /anything are
   reflected back as JSON; see the echoserver package for the other routes.

Options:
   -c, --config path  Path to the configuration file
   -h, --help         Show this usage information
       --host name    Address to bind (overrides serve.host)
   -p, --port n       Port to bind, 0 for any (overrides serve.port)
`

func serve(ctx context.Context, args []string) error {
	var host string
	var port int
	flagSet := newFlagSet("webreq serve", serveUsage)
	flagSet.StringVar(&host, "host", "", "")
	flagSet.IntVarP(&port, "port", "p", 0, "")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("webreq serve: unexpected arguments %q", args)
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.close(context.Background()) }()

	cfg := a.cfg.Serve
	if flagSet.Changed("host") {
		cfg.Host = host
	}
	if flagSet.Changed("port") {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := echoserver.New(cfg, logger.Get("echoserver"))
	if err := srv.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "listening on http://%s\n", srv.Addr())

	<-ctx.Done()
	return srv.Stop(context.Background())
}
